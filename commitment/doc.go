// SPDX-License-Identifier: MIT

// Package commitment schedules generating units over a daily load profile.
//
// It is a reporting companion to the placement search: given the total
// system demand after a load is placed, it answers which units run in each
// period and at what cost. The built-in PriorityList commits units in
// merit order (ascending linear cost) until committed capacity covers the
// period demand, then dispatches every committed unit at Pmin and tops up
// in the same order.
//
// Cost per period is Σ (CostFixed·u + CostLinear·P) over committed units.
package commitment
