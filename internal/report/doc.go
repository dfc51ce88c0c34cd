// Package report formats room utilization metrics into the text report and
// runs the end-to-end reporting pipeline: aggregate, format, publish.
package report
