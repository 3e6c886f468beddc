package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vavi-recipes/vavi/internal/ingredient"
	"github.com/vavi-recipes/vavi/internal/recommend"
)

var flagSuggestN int

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest random known ingredients to try",
	Args:  cobra.NoArgs,
	RunE:  runSuggest,
}

func init() {
	suggestCmd.Flags().IntVar(&flagSuggestN, "n", 5, "Number of ingredients to suggest")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(_ *cobra.Command, _ []string) error {
	cfg, log, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := interruptContext()
	defer cancel()
	svc, err := recommend.Setup(ctx, cfg, log)
	if err != nil {
		return err
	}
	tokens := svc.SuggestIngredients(flagSuggestN)
	for _, t := range tokens {
		printInfo("", ingredient.Display(t))
	}
	if len(tokens) > 0 {
		fmt.Printf("\n  Try: vavi recommend %s\n", suggestionLine(tokens))
	}
	return nil
}

// suggestionLine formats tokens the way recommend expects them as input.
func suggestionLine(tokens []ingredient.Token) string {
	names := make([]string, len(tokens))
	for i, t := range tokens {
		names[i] = strings.ToLower(ingredient.Display(t))
	}
	return fmt.Sprintf("%q", strings.Join(names, ", "))
}
