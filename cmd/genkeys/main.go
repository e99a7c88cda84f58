// Command genkeys generates activation keys, stores them in the bot database
// and writes them to a text file for handing out.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/oldtora/ppshiftsbot/internal/store"
)

type config struct {
	DBPath string `envconfig:"DATABASE_PATH" default:"./data/bot.db"`
}

func main() {
	count := flag.Int("n", 50, "number of keys to generate")
	out := flag.String("out", "./data/keys.txt", "file to write the generated keys to")
	flag.Parse()

	if err := run(*count, *out); err != nil {
		_, _ = os.Stderr.WriteString("genkeys: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func run(count int, out string) error {
	if count < 1 {
		return fmt.Errorf("key count must be positive, got %d", count)
	}

	_ = godotenv.Load()
	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		return err
	}

	ctx := context.Background()
	repo, err := store.OpenSQLite(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	keys := make([]string, 0, count)
	for i := 0; i < count; i++ {
		keys = append(keys, newKey())
	}
	if err := repo.AddActivationKeys(ctx, keys); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(out, []byte(strings.Join(keys, "\n")+"\n"), 0o600); err != nil {
		return err
	}

	fmt.Printf("generated %d keys, written to %s\n", count, out)
	return nil
}

// newKey returns a 16-hex-char key, short enough to type by hand.
func newKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
