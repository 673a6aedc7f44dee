// Package similarity compares tickets and ranks a corpus against a
// candidate.
//
// Text is compared by token and bigram Jaccard similarity, affected files
// by normalized path overlap, labels by case-insensitive Jaccard
// similarity. The four sub-scores are combined with configured weights
// into one score rounded to three decimals. Everything here is pure and
// holds no shared state, so a Ranker may be used from many goroutines.
package similarity
