// Package planner decides the per-file action (pixelate or skip) and builds
// the FilePlan that the pipeline hands to a transform backend.
package planner
