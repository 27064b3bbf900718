// Package progression groups the activity-to-achievement pipeline: domain
// events and stats aggregation, the achievement catalog, criterion
// evaluation, per-user atomic storage, and the tracking facade that ties
// them together.
package progression
