// Package admin implements the maintenance subcommands of the pageclean
// admin binary: schema migration, score decay, lease reclamation, imports,
// exports and user/token provisioning.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/pageclean/internal/common"
	"github.com/dmitrijs2005/pageclean/internal/server"
	"github.com/dmitrijs2005/pageclean/internal/server/auth"
	"github.com/dmitrijs2005/pageclean/internal/server/config"
	"github.com/dmitrijs2005/pageclean/internal/server/services"
)

var ErrUsage = errors.New("usage")

const usage = `usage: admin [flags] <command> [args]

commands:
  migrate                                 apply database migrations
  decay                                   decay every user's score once
  reclaim <short>                         release expired leases in a collection
  mission <name> <short> <yyyy-mm-dd> [<yyyy-mm-dd>|- [wiki]]
                                          create a collection
  import <short> <dir> [start [end]]      import page-NNN.txt files
  export <short> [transcript]             publish the transcript to S3
  progress <short>                        print page counts
  user <name>                             register a user
  token <user-id>                         mint an access token
`

type exporter interface {
	Export(ctx context.Context, shortName, transcriptName string) (*services.ExportResult, error)
}

// Commands runs admin subcommands against an initialized App.
type Commands struct {
	app *server.App
	cfg *config.Config
	out io.Writer

	// seams
	dirFS       func(dir string) fs.FS
	newExporter func(ctx context.Context) (exporter, error)
}

func NewCommands(app *server.App, cfg *config.Config, out io.Writer) *Commands {
	return &Commands{
		app:   app,
		cfg:   cfg,
		out:   out,
		dirFS: os.DirFS,
		newExporter: func(ctx context.Context) (exporter, error) {
			return app.Exporter(ctx)
		},
	}
}

func needArgs(args []string, min, max int) error {
	if len(args) < min || len(args) > max {
		return fmt.Errorf("%w: wrong number of arguments", ErrUsage)
	}
	return nil
}

// Run executes the subcommand named by args[0].
func (c *Commands) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(c.out, usage)
		return ErrUsage
	}

	cmd, args := args[0], args[1:]
	svc := c.app.Services()

	switch cmd {
	case "help":
		fmt.Fprint(c.out, usage)
		return nil

	case "migrate":
		// NewApp already brought the schema up to date
		fmt.Fprintln(c.out, "schema is up to date")
		return nil

	case "decay":
		if err := needArgs(args, 0, 0); err != nil {
			return err
		}
		factor, err := services.DecayFactor(c.cfg.DecayFrequency, c.cfg.DecayHalfLife)
		if err != nil {
			return err
		}
		n, err := svc.Scores.DecayScores(ctx, factor)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "decayed %d scores by %.8f\n", n, factor)
		return nil

	case "reclaim":
		if err := needArgs(args, 1, 1); err != nil {
			return err
		}
		collection, err := svc.Collections.ByShortName(ctx, args[0])
		if err != nil {
			return fmt.Errorf("collection %q: %w", args[0], err)
		}
		n, err := svc.Leases.ReclaimExpiredLeases(ctx, collection.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "released %d expired leases in %s\n", n, collection.ShortName)
		return nil

	case "mission":
		if err := needArgs(args, 3, 5); err != nil {
			return err
		}
		startsOn, err := time.Parse(time.DateOnly, args[2])
		if err != nil {
			return fmt.Errorf("%w: bad date %q", common.ErrInvalidArgument, args[2])
		}
		var endsOn time.Time
		if len(args) > 3 && args[3] != "-" {
			if endsOn, err = time.Parse(time.DateOnly, args[3]); err != nil {
				return fmt.Errorf("%w: bad date %q", common.ErrInvalidArgument, args[3])
			}
			if endsOn.Before(startsOn) {
				return fmt.Errorf("%w: mission ends before it starts", common.ErrInvalidArgument)
			}
		}
		var wiki string
		if len(args) > 4 {
			wiki = args[4]
		}
		collection, err := svc.Collections.Create(ctx, args[0], args[1], startsOn)
		if err != nil {
			return err
		}
		if !endsOn.IsZero() || wiki != "" {
			if err := svc.Collections.SetDetails(ctx, collection.ID, endsOn, wiki); err != nil {
				return err
			}
		}
		fmt.Fprintf(c.out, "created %s (%s) id=%d\n", collection.Name, collection.ShortName, collection.ID)
		return nil

	case "import":
		if err := needArgs(args, 2, 4); err != nil {
			return err
		}
		collection, err := svc.Collections.ByShortName(ctx, args[0])
		if err != nil {
			return fmt.Errorf("collection %q: %w", args[0], err)
		}
		bounds := make([]int, 2)
		for i, raw := range args[2:] {
			if bounds[i], err = strconv.Atoi(raw); err != nil {
				return fmt.Errorf("%w: bad page number %q", common.ErrInvalidArgument, raw)
			}
		}
		fmt.Fprintf(c.out, "importing for %s\n", collection.Name)
		n, err := svc.Importer.Import(ctx, collection.ID, c.dirFS(args[1]), bounds[0], bounds[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "imported %d pages\n", n)
		return nil

	case "export":
		if err := needArgs(args, 1, 2); err != nil {
			return err
		}
		name := ""
		if len(args) > 1 {
			name = args[1]
		}
		ex, err := c.newExporter(ctx)
		if err != nil {
			return err
		}
		res, err := ex.Export(ctx, args[0], name)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "exported %d pages to %s and %s\n", res.Pages, res.TranscriptKey, res.MetaKey)
		return nil

	case "progress":
		if err := needArgs(args, 1, 1); err != nil {
			return err
		}
		collection, err := svc.Collections.ByShortName(ctx, args[0])
		if err != nil {
			return fmt.Errorf("collection %q: %w", args[0], err)
		}
		p, err := svc.Collections.Progress(ctx, collection.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.out, "%s: %d pages, %d cleaned, %d approved\n", collection.ShortName, p.Total, p.Cleaned, p.Approved)
		return nil

	case "user":
		if err := needArgs(args, 1, 1); err != nil {
			return err
		}
		u, err := svc.Scores.RegisterUser(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, u.ID)
		return nil

	case "token":
		if err := needArgs(args, 1, 1); err != nil {
			return err
		}
		if _, err := svc.Scores.User(ctx, args[0]); err != nil {
			return fmt.Errorf("user %q: %w", args[0], err)
		}
		token, err := auth.GenerateToken(args[0], []byte(c.cfg.SecretKey), c.cfg.AccessTokenValidityDuration)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, token)
		return nil

	default:
		fmt.Fprint(c.out, usage)
		return fmt.Errorf("%w: unknown command %q", ErrUsage, strings.TrimSpace(cmd))
	}
}
