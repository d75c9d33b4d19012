package common

import (
	"errors"
	"os"
	"path"

	ini "github.com/lars-t-hansen/ini"
)

// User defaults from ~/.sblogz.  Only options naming files or sinks are
// defaultable; analysis options must be given on the command line.

// MT: Constant after initialization
var (
	p     = ini.NewParser()
	store *ini.Store

	dataSource        = p.AddSection("data-source")
	DataSourceLogFile = dataSource.AddString("log-file")
	DataSourceAcct    = dataSource.AddString("acct-file")
	DataSourceDataDir = dataSource.AddString("data-dir")

	output          = p.AddSection("output")
	OutputTreeFile  = output.AddString("tree-file")
	OutputCallsFile = output.AddString("calls-file")

	export            = p.AddSection("export")
	ExportDatabaseURI = export.AddString("database-uri")
)

func init() {
	home := os.Getenv("HOME")
	if home == "" {
		return
	}
	fn := path.Join(path.Clean(home), ".sblogz")
	input, err := os.Open(fn)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			Log.Errorf("Error in trying to open %s: %s", fn, err.Error())
		}
		return
	}
	defer input.Close()
	store, err = p.Parse(input)
	if err != nil {
		Log.Errorf("Error in trying to parse %s: %s", fn, err.Error())
		return
	}
}

func HasDefault(f *ini.Field) bool {
	return store != nil && f.Present(store)
}

func ApplyDefault(sp *string, f *ini.Field) bool {
	if *sp != "" || store == nil || !f.Present(store) {
		return false
	}
	*sp = os.ExpandEnv(f.StringVal(store))
	return true
}
