package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/soraprompter/internal/common"
	"github.com/dmitrijs2005/soraprompter/internal/filex"
	"github.com/dmitrijs2005/soraprompter/internal/generation"
)

// loadMedia is a test seam for filex.LoadMedia.
var loadMedia = filex.LoadMedia

// Generate reads the media at path and prints the extracted prompt. In admin
// mode the generation is not charged.
func (a *App) Generate(ctx context.Context, path string) error {
	if path == "" {
		fmt.Fprintln(a.out, "Usage: generate <path to image or video>")
		return nil
	}

	m, err := loadMedia(path, a.maxUpload)
	if err != nil {
		switch {
		case errors.Is(err, filex.ErrNotMedia):
			fmt.Fprintln(a.out, "Please choose an image or a video file.")
		case errors.Is(err, filex.ErrTooLarge):
			fmt.Fprintf(a.out, "File is too large (limit %d MB).\n", a.maxUpload>>20)
		default:
			fmt.Fprintf(a.out, "Cannot read %s: %v\n", path, err)
		}
		return nil
	}

	kind := "image"
	if filex.IsVideo(m) {
		kind = "video"
	}
	fmt.Fprintf(a.out, "Analyzing %s %s (%s)...\n", kind, m.Name, m.MIMEType)

	var res *generation.Result
	if a.adminMode {
		res, err = a.generator.GenerateUncharged(ctx, m)
	} else {
		res, err = a.generator.Generate(ctx, m)
	}
	switch {
	case errors.Is(err, common.ErrNotAuthenticated):
		a.userName = ""
		fmt.Fprintln(a.out, "Please log in first.")
		return nil
	case errors.Is(err, common.ErrInsufficientCredits):
		fmt.Fprintln(a.out, "Out of credits. Upgrade to VIP or come back tomorrow for the daily bonus.")
		return nil
	case err != nil:
		fmt.Fprintf(a.out, "Generation failed: %v\n", err)
		return nil
	}

	fmt.Fprintln(a.out, "\n"+res.Prompt+"\n")
	if res.Charged {
		fmt.Fprintln(a.out, "Generation complete.")
	}
	return nil
}
