// Package engine implements the merge passes of structural Gaussian
// elimination.
//
// The engine orchestrates:
//   - the merge selector, which prices every light column with a
//     Markowitz fill-in estimate and bucket-sorts the candidates by cost
//   - the merge executor, which claims the rows of each candidate and
//     eliminates the column along a minimum spanning tree of its rows
//   - the pass loop, which escalates the weight ceiling and the cost bound,
//     collects arena garbage and renumbers columns until the target density
//     is reached
//
// Merges of one pass run concurrently. Two merges sharing a row never both
// run: the loser is dropped and reconsidered in a later pass.
package engine
