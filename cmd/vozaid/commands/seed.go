package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vozaid/vozaid/cmd/vozaid/internal/ui"
	"github.com/vozaid/vozaid/pkg/intent"
)

var (
	flagSeedServer string
	flagSeedDir    string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the intent database from a directory of wav clips",
	Long: `Seed the intent database through a running vozaid server.

Each *.wav file in the directory is submitted to /api/audio and the
returned pending embedding is confirmed under the intent named by the
file's prefix: "<intent>_anything.wav" (case-insensitive), e.g.
water_02.wav → WATER. Files whose prefix is not a known intent are
skipped with a warning.

Recommended: 2-3 clips per intent minimum before relying on matching.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&flagSeedServer, "server", "http://127.0.0.1:8000", "vozaid server base URL")
	seedCmd.Flags().StringVar(&flagSeedDir, "dir", "", "directory containing wav clips (required)")
	seedCmd.MarkFlagRequired("dir")

	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	styles := ui.NewStyles(ui.DefaultTheme)
	client := &http.Client{Timeout: 60 * time.Second}

	paths, err := filepath.Glob(filepath.Join(flagSeedDir, "*.wav"))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no wav files in %s", flagSeedDir)
	}
	sort.Strings(paths)

	counts := map[string]int{}
	skipped := 0
	for _, path := range paths {
		label, ok := intentFromFilename(path)
		if !ok {
			fmt.Printf("%s %s: no intent prefix, skipped\n", styles.Warn.Render("skip"), filepath.Base(path))
			skipped++
			continue
		}

		token, err := submitClip(client, flagSeedServer, path)
		if err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		if token == "" {
			fmt.Printf("%s %s: model produced no embedding, skipped\n", styles.Warn.Render("skip"), filepath.Base(path))
			skipped++
			continue
		}

		if err := confirmClip(client, flagSeedServer, token, label); err != nil {
			return fmt.Errorf("%s: confirm: %w", filepath.Base(path), err)
		}
		counts[string(label)]++
		fmt.Printf("%s %s → %s\n", styles.Dim.Render("seed"), filepath.Base(path), styles.Label.Render(string(label)))
	}

	fmt.Println()
	fmt.Println(styles.Title.Render("Seeded exemplars"))
	order := make([]string, 0, len(counts))
	for label := range counts {
		order = append(order, label)
	}
	sort.Strings(order)
	fmt.Print(styles.CountTable(order, counts))
	if skipped > 0 {
		fmt.Println(styles.Dim.Render(fmt.Sprintf("  (%d files skipped)", skipped)))
	}
	return nil
}

// intentFromFilename maps "water_02.wav" to WATER.
// The prefix runs up to the first '_' or '-', or the whole stem.
func intentFromFilename(path string) (intent.Intent, bool) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.IndexAny(stem, "_-"); i > 0 {
		stem = stem[:i]
	}
	in, err := intent.Parse(strings.ToUpper(stem))
	if err != nil {
		return "", false
	}
	return in, true
}

// submitClip POSTs a wav file to /api/audio and returns the pending
// embedding token (empty when the model produced no embedding).
func submitClip(client *http.Client, server, path string) (string, error) {
	audio, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("audio", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := part.Write(audio); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	resp, err := client.Post(server+"/api/audio", mw.FormDataContentType(), &body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("server returned %d: %s", resp.StatusCode, payload)
	}

	var result struct {
		EmbeddingID string `json:"embedding_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.EmbeddingID, nil
}

// confirmClip confirms a pending embedding under the given intent.
func confirmClip(client *http.Client, server, token string, label intent.Intent) error {
	url := fmt.Sprintf("%s/api/audio/confirm?embedding_id=%s&intent=%s", server, token, label)
	resp, err := client.Post(url, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, payload)
	}
	return nil
}
