// Command mealrecord is the non-UI host of the meal record core: it opens
// the local stores, ensures their schema and exposes the ledger operations
// to scripts and debugging sessions.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chanikarn/mealrecord/internal/config"
	"github.com/chanikarn/mealrecord/internal/export"
	"github.com/chanikarn/mealrecord/internal/identity"
	"github.com/chanikarn/mealrecord/internal/imagestore"
	"github.com/chanikarn/mealrecord/internal/ledger"
	"github.com/chanikarn/mealrecord/internal/logging"
	"github.com/chanikarn/mealrecord/internal/models"
	"github.com/chanikarn/mealrecord/internal/nutrition"
	"github.com/chanikarn/mealrecord/internal/store"
)

// Version is set at build time.
var Version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	logging.Init(os.Stderr, cfg.Logger.Level)

	app, err := newApp(cfg)
	if err != nil {
		logging.Error("startup failed", err)
		os.Exit(1)
	}
	defer app.stores.Close()

	if err := app.run(os.Args[1], os.Args[2:]); err != nil {
		logging.Error("command failed", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `mealrecord v%s

Usage:
  mealrecord identify -id <userId> -email <email>
  mealrecord save -name <food> -type <breakfast|lunch|dinner|other> [flags]
  mealrecord summary [-date YYYY-MM-DD]
  mealrecord delete -id <recordId>
  mealrecord export -format <json|csv|sql> [-stdout]
`, Version)
}

// app owns the wired components for one invocation.
type app struct {
	cfg        *config.Config
	stores     *store.Context
	state      *identity.State
	identities *identity.Resolver
	ledger     *ledger.Ledger
	serializer *export.Serializer
	images     *imagestore.Store
}

func newApp(cfg *config.Config) (*app, error) {
	stores, err := store.OpenContext(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	// Migration completes before any write is issued.
	schema := store.NewManager(stores.Ledger)
	if err := schema.Ensure(); err != nil {
		stores.Close()
		return nil, err
	}
	if err := store.EnsureUserSchema(stores.Users); err != nil {
		stores.Close()
		return nil, err
	}
	if err := store.EnsureNutritionSchema(stores.Nutrition); err != nil {
		stores.Close()
		return nil, err
	}

	synonyms, err := nutrition.LoadSynonyms(cfg.SynonymsFile)
	if err != nil {
		logging.Warn("failed to load synonym table, using built-in",
			map[string]interface{}{"path": cfg.SynonymsFile, "error": err.Error()})
		synonyms = nutrition.DefaultSynonyms()
	}

	state := identity.NewState(cfg.DataDir)
	identities := identity.NewResolver(state, stores.Users)
	facts := nutrition.NewResolver(stores.Nutrition, synonyms)
	l := ledger.New(stores.Ledger, schema, identities, facts)

	return &app{
		cfg:        cfg,
		stores:     stores,
		state:      state,
		identities: identities,
		ledger:     l,
		serializer: export.NewSerializer(l),
		images:     imagestore.New(cfg.DataDir),
	}, nil
}

func (a *app) run(command string, args []string) error {
	switch command {
	case "identify":
		return a.cmdIdentify(args)
	case "save":
		return a.cmdSave(args)
	case "summary":
		return a.cmdSummary(args)
	case "delete":
		return a.cmdDelete(args)
	case "export":
		return a.cmdExport(args)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

// cmdIdentify caches the identity asserted by the authentication
// collaborator. The core trusts a resolved user id, not a raw token.
func (a *app) cmdIdentify(args []string) error {
	fs := flag.NewFlagSet("identify", flag.ExitOnError)
	id := fs.Int64("id", 0, "resolved user id")
	email := fs.String("email", "", "account email")
	fs.Parse(args)

	if err := a.state.SetIdentity(*id, *email); err != nil {
		return err
	}
	logging.Info("identity cached", map[string]interface{}{"userId": *id})
	return nil
}

func (a *app) cmdSave(args []string) error {
	fs := flag.NewFlagSet("save", flag.ExitOnError)
	name := fs.String("name", "", "food name (possibly AI-suggested)")
	mealType := fs.String("type", "other", "meal type")
	date := fs.String("date", "", "calendar date, defaults to today")
	quantity := fs.String("qty", "", "quantity in grams")
	kcal := fs.String("kcal", "", "energy override, kcal per serving")
	protein := fs.String("protein", "", "protein override, grams")
	fat := fs.String("fat", "", "fat override, grams")
	carb := fs.String("carb", "", "carbohydrate override, grams")
	image := fs.String("image", "", "path to a photo to store")
	fs.Parse(args)

	req := &ledger.SaveRequest{
		Date:          *date,
		MealType:      models.MealType(*mealType),
		FoodName:      *name,
		Quantity:      *quantity,
		EnergyKcal:    *kcal,
		ProteinG:      *protein,
		FatG:          *fat,
		CarbohydrateG: *carb,
	}
	if *image != "" {
		ref, err := a.images.Put(*image)
		if err != nil {
			return err
		}
		req.FoodImage = &ref
	}

	id, err := a.ledger.SaveForCurrentUser(req)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func (a *app) cmdSummary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	date := fs.String("date", time.Now().Format("2006-01-02"), "calendar date")
	fs.Parse(args)

	userID, err := a.identities.ResolveUserID()
	if err != nil {
		return err
	}
	summary, err := a.ledger.Summarize(userID, *date)
	if err != nil {
		return err
	}

	fmt.Printf("%s  kcal=%.1f protein=%.1fg fat=%.1fg carb=%.1fg\n",
		summary.Date, summary.EnergyKcal, summary.ProteinG, summary.FatG, summary.CarbohydrateG)
	for _, mt := range models.KnownMealTypes {
		fmt.Printf("  %-10s %.1f kcal\n", mt, summary.KcalByType[mt])
	}
	return nil
}

func (a *app) cmdDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.Int64("id", 0, "record id")
	fs.Parse(args)

	userID, err := a.identities.ResolveUserID()
	if err != nil {
		return err
	}
	return a.ledger.DeleteByID(*id, userID)
}

func (a *app) cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	format := fs.String("format", "json", "export format: json, csv or sql")
	toStdout := fs.Bool("stdout", false, "write to stdout instead of a file")
	fs.Parse(args)

	if *toStdout {
		data, err := a.serializer.Export(export.Format(*format))
		if err != nil {
			return err
		}
		os.Stdout.Write(data)
		fmt.Println()
		return nil
	}

	path, err := a.serializer.ExportToFile(export.Format(*format), a.cfg.ExportDir)
	if err != nil {
		return err
	}
	logging.Info("export written", map[string]interface{}{"path": path})
	fmt.Println(path)
	return nil
}
