/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const qrSize = 320

// printQR writes the server url as a terminal QR code so a second player can
// copy it from a phone.
func printQR(cfg *Config, w io.Writer) error {
	code, err := qrcode.New(cfg.shareURL(), qrcode.Medium)
	if err != nil {
		return fmt.Errorf("encode qr code: %w", err)
	}

	_, err = fmt.Fprintf(w, "%s\nJoin at %s\n", code.ToSmallString(false), cfg.shareURL())

	return err
}

func serveQR(cfg *Config, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		startTime := time.Now()

		png, err := qrcode.Encode(cfg.shareURL(), qrcode.Medium, qrSize)
		if err != nil {
			errs <- err

			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "image/png")
		securityHeaders(w)
		w.WriteHeader(http.StatusOK)

		written, err := w.Write(png)
		if err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: QR code (%s) to %s in %s",
			humanReadableSize(int64(written)),
			realIP(r),
			time.Since(startTime).Round(time.Microsecond),
		)
	}
}
