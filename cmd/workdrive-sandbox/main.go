// Command workdrive-sandbox serves the in-memory fake WorkDrive API on a
// local port so the SDK, CLI and examples can run without real credentials.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/driveport/workdrive_sdk_go/internal/logger"
	"github.com/driveport/workdrive_sdk_go/internal/workdrivetest"
)

type failConfig struct {
	rate float64
	code int
}

func main() {
	addr := flag.String("addr", ":8787", "listen address")
	token := flag.String("token", "sandbox-token", "bearer token the fake API expects")
	rootName := flag.String("root-name", "Sandbox", "name of the seeded root folder")
	latency := flag.Duration("latency", 0, "artificial latency to inject per request")
	fail := flag.String("fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	flag.Parse()

	log := logger.New(&logger.Config{Level: *logLevel, Format: "console"})

	failCfg, err := parseFailConfig(*fail)
	if err != nil {
		log.Fatal().Err(err).Msg("parse fail flag")
	}

	srv := workdrivetest.New()
	srv.SetToken(*token)
	rootID := srv.AddFolder("", *rootName)

	server := &http.Server{
		Addr:    *addr,
		Handler: withMiddleware(*latency, failCfg, srv.Handler()),
	}

	host := *addr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	log.Info().Str("addr", *addr).Str("root_id", rootID).Msg("workdrive-sandbox listening")
	fmt.Println()
	fmt.Printf("export WORKDRIVE_API_URL=http://%s\n", host)
	fmt.Printf("export WORKDRIVE_DOWNLOAD_URL=http://%s\n", host)
	fmt.Printf("export WORKDRIVE_ACCESS_TOKEN=%s\n", *token)
	fmt.Printf("# seeded root folder id: %s\n", rootID)
	fmt.Println()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func withMiddleware(delay time.Duration, failCfg failConfig, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			time.Sleep(delay)
		}
		if failCfg.rate > 0 && rand.Float64() < failCfg.rate {
			w.Header().Set("Content-Type", "application/vnd.api+json")
			w.WriteHeader(failCfg.code)
			fmt.Fprintf(w, `{"errors":[{"id":"S%d","title":"Injected failure"}]}`, failCfg.code)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func parseFailConfig(raw string) (failConfig, error) {
	cfg := failConfig{code: http.StatusInternalServerError}
	if strings.TrimSpace(raw) == "" {
		return cfg, nil
	}
	for _, part := range strings.Split(raw, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			return cfg, fmt.Errorf("malformed fail directive %q", part)
		}
		switch kv[0] {
		case "rate":
			rate, err := strconv.ParseFloat(kv[1], 64)
			if err != nil || rate < 0 || rate > 1 {
				return cfg, fmt.Errorf("invalid fail rate %q", kv[1])
			}
			cfg.rate = rate
		case "code":
			code, err := strconv.Atoi(kv[1])
			if err != nil || code < 400 || code > 599 {
				return cfg, fmt.Errorf("invalid fail code %q", kv[1])
			}
			cfg.code = code
		default:
			return cfg, fmt.Errorf("unknown fail key %q", kv[0])
		}
	}
	return cfg, nil
}
