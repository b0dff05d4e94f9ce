// Package exporter writes issued license keys to CSV and Excel files and
// reads identity lists back for batch issuing.
//
// The output format follows the file extension:
//
//	.csv   comma separated, UTF-8 BOM so Excel opens it cleanly
//	.xlsx  one "Keys" sheet written through the excelize stream writer
//
// Every export has the columns seed, identity and key. Seeds are written as
// decimal text because spreadsheet numbers cannot hold a full uint64.
package exporter
