// Package analytics turns answer records into advisory feedback: trend
// direction, per-category accuracy, strengths and weaknesses, and a study tip.
//
// Every function degrades to a neutral result on empty or minimal input
// instead of returning an error, so a report can always be rendered.
package analytics
