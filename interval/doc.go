/*Package interval implements closed integer intervals on a single coordinate
  axis, the overlap ratio used to decide whether two predicted loci describe the
  same region, and an overlap index for looking up many intervals at once.

  All coordinates are inclusive on both ends: [Start, End] covers
  End-Start+1 positions.  Chromosome identity is not tracked here; callers
  compare intervals only when they already share a chromosome.
*/
package interval
