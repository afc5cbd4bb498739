// Package sca parses OMNeT++ scalar-result (.sca) files into flat records
// for downstream aggregation (see pkg/sweep) and energy modeling (see
// pkg/energy).
//
// The format is line-oriented and semi-structured. Only two line kinds are
// interpreted; everything else (run headers, statistic/field blocks, config
// dumps, version lines) is skipped without error so newer simulator versions
// keep working:
//
//	attr <key> <value>
//	scalar <module> <name> <value> [unit]
//
// Module, name, and attribute values may be wrapped in single or double
// quotes, which are stripped when the first and last character are the same
// quote. Numeric values accept integers, decimals, and scientific notation;
// a token that fails to parse yields NaN but the record is still emitted so
// per-name counts stay accurate.
//
// Error policy: malformed lines never abort a file. A missing or unreadable
// file does return an error, since that indicates a collection bug upstream
// rather than a data-quality issue.
package sca
