package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/juliusiqbal/ai-img-gen/internal/domain"
	"github.com/juliusiqbal/ai-img-gen/internal/domain/jsoncfg"
	"github.com/juliusiqbal/ai-img-gen/internal/promptsynth"
	"github.com/juliusiqbal/ai-img-gen/internal/providers/openai"
)

func newPromptCmd(root *rootOptions) *cobra.Command {
	var (
		req    jsoncfg.PreviewRequest
		remote bool
	)
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Synthesize image prompts for a category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			structured := req.Structured()
			req.Normalize()
			if err := req.Validate(); err != nil {
				return err
			}
			if req.CategoryName == "" {
				return fmt.Errorf("%w: --category is required", domain.ErrInvalidInput)
			}

			var model promptsynth.LanguageModel
			if remote {
				key := os.Getenv("OPENAI_API_KEY")
				if key == "" {
					return openai.ErrMissingAPIKey
				}
				model = openai.NewClient(openai.Options{
					APIKey:    key,
					BaseURL:   os.Getenv("OPENAI_BASE_URL"),
					ChatModel: os.Getenv("OPENAI_CHAT_MODEL"),
					Logger:    &root.logger,
				})
			}
			synth := promptsynth.New(promptsynth.Options{Model: model, Logger: root.logger})

			pr := promptsynth.Request{Category: req.CategoryName, Details: req.CategoryDetails}
			if structured {
				pr.Preferences = &promptsynth.DesignPreferences{
					TemplateType:    req.TemplateType,
					Keywords:        req.Keywords,
					FontFamily:      req.FontFamily,
					FontSizes:       req.FontSizes,
					ColorTheme:      req.ColorTheme,
					BackgroundColor: req.BackgroundColor,
					ImageStyle:      req.ImageStyle,
					CategoryName:    req.CategoryName,
					CategoryDetails: req.CategoryDetails,
				}
			}
			prompts, err := synth.SynthesizeBatch(cmd.Context(), pr, req.NumberOfTemplates)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, p := range prompts {
				fmt.Fprintf(out, "[%d %s] %s\n", p.Variation+1, p.Strategy, p.Text)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&req.CategoryName, "category", "c", "", "category name")
	f.StringVarP(&req.CategoryDetails, "details", "d", "", "free-form details")
	f.IntVarP(&req.NumberOfTemplates, "count", "n", 1, "number of prompts")
	f.StringVar(&req.TemplateType, "template-type", "", "poster, banner, brochure, postcard, flyer or social")
	f.StringVar(&req.Keywords, "keywords", "", "comma separated keywords")
	f.StringVar(&req.FontFamily, "font-family", "", "font family")
	f.StringSliceVar(&req.FontSizes, "font-size", nil, "font size per text block")
	f.StringVar(&req.ColorTheme, "color-theme", "", "color theme")
	f.StringVar(&req.BackgroundColor, "background-color", "", "background color")
	f.StringVar(&req.ImageStyle, "image-style", "", "image style")
	f.BoolVar(&remote, "remote", false, "refine prompts with the OpenAI chat model")
	return cmd
}
