// SPDX-License-Identifier: MIT

// Package loading turns DC flow results into the quantities a placement
// decision is based on: thermal violations, loading changes against a base
// case, the most affected branch, and generator capacity and limit checks.
//
// Every function is pure and allocation-light; nothing here holds state.
package loading
