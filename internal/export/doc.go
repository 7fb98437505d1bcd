// Package export renders a finished run for people and other tools.
//
// Charts are drawn with gonum/plot: kinetic, potential and total energy
// against "Time (s)" on an "Energy (J)" axis, with legend and grid. Data
// can be written as JSON, CSV or an XLSX workbook. Non-finite samples from
// degenerate runs are kept in the data files (null in JSON, "NaN"/"+Inf"
// text elsewhere) and skipped in charts.
package export
