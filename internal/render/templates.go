package render

import (
	"fmt"
	"html/template"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// ParseDir recursively discovers and parses every .tmpl file under dir.
func ParseDir(dir string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"now": time.Now,
	}
	// ParseGlob doesn't support **.
	var files []string
	if err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".tmpl") {
			files = append(files, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no templates found under %s", dir)
	}
	return template.New("_root").Funcs(funcMap).ParseFiles(files...)
}
