package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/vozaid/vozaid/cmd/vozaid/internal/ui"
)

var flagIntentsServer string

var intentsCmd = &cobra.Command{
	Use:   "intents",
	Short: "Show the intent enumeration and per-intent exemplar counts",
	RunE:  runIntents,
}

func init() {
	intentsCmd.Flags().StringVar(&flagIntentsServer, "server", "http://127.0.0.1:8000", "vozaid server base URL")

	rootCmd.AddCommand(intentsCmd)
}

func runIntents(cmd *cobra.Command, args []string) error {
	styles := ui.NewStyles(ui.DefaultTheme)
	client := &http.Client{Timeout: 10 * time.Second}

	var list struct {
		Intents []string `json:"intents"`
	}
	if err := getJSON(client, flagIntentsServer+"/api/audio/intents/list", &list); err != nil {
		return err
	}

	var stats struct {
		Intents map[string]int `json:"intents"`
	}
	if err := getJSON(client, flagIntentsServer+"/api/audio/intents", &stats); err != nil {
		return err
	}

	total := 0
	for _, n := range stats.Intents {
		total += n
	}

	fmt.Println(styles.Title.Render("Intents"))
	fmt.Print(styles.CountTable(list.Intents, stats.Intents))
	fmt.Println(styles.Dim.Render(fmt.Sprintf("  %d exemplars total", total)))
	return nil
}

// getJSON fetches a URL and decodes its JSON body into v.
func getJSON(client *http.Client, url string, v any) error {
	resp, err := client.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, payload)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
