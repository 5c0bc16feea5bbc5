// Package match decides whether a destination search result is the same song as a source track.
//
// Only track names are compared. Both names are normalized before an edit-distance
// ratio on a 0-100 scale is computed: case and punctuation are folded, bracketed
// qualifiers such as "(Remastered 2011)" are removed, and so are featuring credits
// and trailing release suffixes like "- Radio Edit". Words such as "live" or
// "radio" inside the title itself are kept. A candidate is accepted when the
// ratio exceeds [Threshold].
package match
