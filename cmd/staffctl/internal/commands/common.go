package commands

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"staffingapi/internal/config"
	"staffingapi/internal/database"
	"staffingapi/internal/database/verify"
	"staffingapi/internal/logging"
)

var errVerificationFailed = errors.New("verification failed")

// openDB is swapped in tests.
var openDB = database.NewPostgres

// setup loads configuration and a JSON logger writing to the command's stderr.
func setup(cmd *cobra.Command) (*config.AppConfig, *logrus.Logger) {
	cfg := config.Load()
	log := logging.NewJSON(cmd.ErrOrStderr(), cfg.Location())
	if lvl, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(lvl)
	}
	return cfg, log
}

func connect(cfg *config.AppConfig) (*sql.DB, error) {
	db, err := openDB(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", database.Host(cfg.Database), err)
	}
	return db, nil
}

func printReport(w io.Writer, title string, r verify.Report, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(struct {
			Check string `json:"check"`
			OK    bool   `json:"ok"`
			verify.Report
		}{title, r.OK(), r})
	}

	fmt.Fprintf(w, "%s\n", title)
	for _, c := range r.Checks {
		mark := "ok  "
		if !c.OK {
			mark = "FAIL"
		}
		if c.Detail != "" {
			fmt.Fprintf(w, "  [%s] %s: %s\n", mark, c.Name, c.Detail)
		} else {
			fmt.Fprintf(w, "  [%s] %s\n", mark, c.Name)
		}
	}
	return nil
}
