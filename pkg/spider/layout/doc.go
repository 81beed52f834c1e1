// Package layout computes spider placements for the members of an opened cluster.
//
// # Overview
//
// When a cluster of overlapping markers is opened, each member is drawn at
// an offset from the cluster centroid so it can be selected individually.
// [Compute] returns one [Placement] per member, in member order, measured in
// screen pixels relative to the centroid.
//
// Two arrangements are used:
//
//   - Circle: up to [Options.CircleSpiralThreshold] members are spaced evenly
//     on a circle whose radius is at least [Options.MinCircleRadius].
//   - Spiral: larger clusters follow an Archimedean-like spiral where both the
//     angle and the leg length grow monotonically, so members never overlap
//     no matter how many there are.
//
// The functions in this package are pure: the same count and options always
// produce the same placements.
//
// # Usage
//
//	placements := layout.Compute(len(members), layout.DefaultOptions())
//	for i, p := range placements {
//	    x, y := center.X+p.DX, center.Y+p.DY
//	    draw(members[i], x, y)
//	}
package layout
