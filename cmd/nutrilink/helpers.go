package nutrilink

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JacobDiB/NutriLink/internal/app"
	"github.com/JacobDiB/NutriLink/internal/db"
	"github.com/JacobDiB/NutriLink/internal/logging"
	"github.com/JacobDiB/NutriLink/internal/provider/fatsecret"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func withDB(cmd *cobra.Command, run func(*gorm.DB) error) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	gdb, err := db.Connect(cfg, path, logging.Gorm(cmd.ErrOrStderr(), cfg.LogLevel))
	if err != nil {
		return err
	}
	defer db.Close(gdb)
	return run(gdb)
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if cfg != nil && cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	return app.DefaultDBPath()
}

func newSearcher() (*fatsecret.Client, error) {
	if err := cfg.RequireFatSecret(); err != nil {
		return nil, err
	}
	return &fatsecret.Client{
		ClientID:     cfg.FatSecretClientID,
		ClientSecret: cfg.FatSecretClientSecret,
		Scope:        cfg.FatSecretScope,
		TokenURL:     cfg.FatSecretTokenURL,
		BaseURL:      cfg.FatSecretBaseURL,
		HTTPClient:   &http.Client{Timeout: cfg.LookupTimeout},
	}, nil
}

func parseDateTimeOrNow(date, timeStr string) (time.Time, error) {
	date = strings.TrimSpace(date)
	timeStr = strings.TrimSpace(timeStr)
	if date == "" && timeStr == "" {
		return time.Now(), nil
	}
	if date == "" {
		return time.Time{}, fmt.Errorf("--date is required when --time is set")
	}
	if timeStr == "" {
		t, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
		}
		return t.Add(12 * time.Hour), nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", date+" "+timeStr, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date/--time (expected YYYY-MM-DD and HH:MM)")
	}
	return t, nil
}

func parseDateOrToday(date string) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --date %q (expected YYYY-MM-DD)", date)
	}
	return t.Add(12 * time.Hour), nil
}

func parsePositiveArg(name, value string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, value)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be > 0", name)
	}
	return v, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func nutrient(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}
