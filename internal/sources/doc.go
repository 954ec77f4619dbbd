// Package sources loads chart input from files, readers and spreadsheets.
//
// Plain text (tab or comma delimited) is returned as-is so the session can
// keep it as its paste buffer. Excel workbooks (.xlsx, .xlsm) are read with
// excelize and converted to a radar.Table.
package sources
