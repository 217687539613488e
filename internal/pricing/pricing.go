// pricing.go
//
// Operations portal for tabletop mech campaigns
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of ops-portal.
// ops-portal is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// ops-portal is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with ops-portal.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

// Package pricing holds the money rules shared by every purchase path.
package pricing

import (
	"math"

	"github.com/localnerve/ops-portal/internal/models"
)

// RoundingStep is the granularity of modified prices.
const RoundingStep = 50

// ClampModifier bounds a percentage cost modifier to the supported range.
func ClampModifier(modifier float64) float64 {
	if math.IsNaN(modifier) {
		return 0
	}
	return math.Min(math.Max(modifier, models.MinCostModifier), models.MaxCostModifier)
}

// ApplyCostModifier scales price by a percentage modifier and rounds to the nearest 50.
// Halves round up.
func ApplyCostModifier(price int64, modifier float64) int64 {
	scaled := float64(price) * (1 + ClampModifier(modifier)/100)
	return int64(math.Floor(scaled/RoundingStep+0.5)) * RoundingStep
}

// SplitShare returns what each of payers owes for cost, rounded up.
func SplitShare(cost int64, payers int) int64 {
	if payers <= 0 || cost <= 0 {
		return 0
	}
	n := int64(payers)
	return (cost + n - 1) / n
}
