/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

const defaultLogFile = "knockbox.log"

func logf(cfg *Config, format string, args ...any) {
	if !cfg.verbose {
		return
	}

	log.Printf("%s | "+format, append([]any{time.Now().Format(logDate)}, args...)...)
}

// openLog points the logger at cfg.logFile so it does not tear the board.
// Verbose logging without a file goes to knockbox.log in the temp dir.
func openLog(cfg *Config) (func() error, error) {
	if cfg.logFile == "" {
		if !cfg.verbose {
			return func() error { return nil }, nil
		}

		cfg.logFile = filepath.Join(os.TempDir(), defaultLogFile)
		pterm.Warning.Printfln("--verbose without --log-file, logging to %s", cfg.logFile)
	}

	f, err := os.OpenFile(cfg.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)

	return f.Close, nil
}

// logErrors drains handler errors the way the status server reports them.
func logErrors(cfg *Config, errs <-chan error) {
	for err := range errs {
		logf(cfg, "ERROR: %v", err)
	}
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body{height:100%;width:100%;margin:0;}pre{font-size:1.1em;padding:1em;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><pre>%s</pre></body></html>", body))

	return htmlBody.String()
}
