// Package dataprocessing turns a shipment spreadsheet into model-ready
// numeric frames.
//
// # Stages
//
//	ParseFile     .xlsx / .csv  → Table (raw string cells)
//	Clean         Table         → Table without fully-empty rows, CleaningReport
//	ToShipments   Table         → []domain.Shipment (typed, schema checked)
//	Engineer      []Shipment    → []domain.EngineeredShipment (buffer, cost/kg, high-risk)
//	Split         labels        → Partition (stratified train / validation / test)
//	FitEncoder    train rows    → Encoder (indicator columns)
//	BuildFrame    rows+Encoder  → Frame
//	FitNormalizer train Frame   → Normalizer (per-column min/max)
//
// The encoder and normalizer are fitted once on a reference set and then
// applied unchanged to every subset, so validation and test rows never
// influence the learned vocabulary or bounds.
//
// # Usage
//
//	table, err := dataprocessing.ParseFile("shipments.xlsx", "")
//	if err != nil {
//	    return err
//	}
//	cleaned, report := dataprocessing.Clean(ctx, table)
//	shipments, err := dataprocessing.ToShipments(cleaned)
//
// # Errors
//
// Unreadable input is an IO error, a missing column or unparseable cell a
// schema error naming column and row, and a zero order weight a
// division-by-zero error. Constant columns are not errors: the normalizer
// maps them to 0 and returns a zero-variance warning.
package dataprocessing
