// Package commands defines the coi-quote CLI and wires dependencies for subcommands.
//
// Commands
//
//   - extract   Print the fields extracted from one certificate
//   - evaluate  Apply the eligibility rules to supplied field values
//   - quote     Extract, evaluate and optionally store one certificate
//   - sample    Evaluate the built-in sample certificate data
//   - batch     Quote every certificate under a directory with a worker pool
//   - watch     Quote certificates as they land in an inbox directory
//   - export    Write stored quotes to an XLSX workbook
//   - serve     Run the gRPC QuoteService
//   - ocr       Print the raw text extracted from a certificate
//   - dbhealth  Check the database connection
//
// # Implementation
//
// The root command loads environment configuration, applies flag overrides,
// and builds the logger, rules engine, text extractor and processor before any
// subcommand runs. Commands that need storage open it themselves.
package commands
