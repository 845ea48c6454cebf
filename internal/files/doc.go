// Package files locates shipment input files.
//
// The input path may name a workbook or CSV file directly, or a directory
// holding dated exports; in that case the most recently modified input
// file is used.
//
// Example usage:
//
//	discovery := files.NewDiscovery("data")
//	path, err := discovery.ResolveInput("incoming")
package files
