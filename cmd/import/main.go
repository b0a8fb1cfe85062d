package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"gorm.io/gorm"

	"centsible/internal/config"
	"centsible/internal/database"
	"centsible/internal/format"
	"centsible/internal/logger"
	"centsible/internal/models"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("Import error: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	email := fs.String("user", "", "email of the account to import into")
	path := fs.String("file", "", "path to the exported JSON")
	dryRun := fs.Bool("dry-run", false, "validate and summarise without writing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *path == "" {
		return errors.New("usage: import -user <email> -file <export.json> [-dry-run]")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	var user models.User
	if err := dbManager.DB().Where("email = ?", strings.ToLower(*email)).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("no account for %s", *email)
		}
		return err
	}

	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer f.Close()

	recs, err := readExport(f, user.ID)
	if err != nil {
		return err
	}

	log := logger.Named("import").With("user_id", user.ID)
	summary, health, err := recs.State.Summary()
	if err != nil {
		return fmt.Errorf("summarise export: %w", err)
	}
	display := format.Display(summary, health, user.Currency)
	log.Infow("Export validated",
		"income", len(recs.Income),
		"categories", len(recs.Categories),
		"transactions", len(recs.Transactions),
		"goals", len(recs.Goals),
		"monthly_income", display.TotalMonthlyIncome,
		"allocated", display.TotalAllocated,
		"score", display.Score,
		"replayed", recs.Replayed)

	if *dryRun {
		log.Info("Dry run, nothing written")
		return nil
	}

	if err := persist(dbManager.DB(), user.ID, recs); err != nil {
		return err
	}
	log.Info("Import complete")
	return nil
}

// persist writes every record in one transaction. Categories the user already
// has are left untouched; the rest of the import still proceeds.
func persist(db *gorm.DB, userID string, recs *records) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var existing []models.BudgetCategory
		if err := tx.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
			return err
		}
		have := make(map[string]bool, len(existing))
		for _, c := range existing {
			have[c.Key.String()] = true
		}

		var categories []models.BudgetCategory
		for _, c := range recs.Categories {
			if have[c.Key.String()] {
				logger.Named("import").Warnw("Skipping existing category", "key", c.Key.String())
				continue
			}
			categories = append(categories, c)
		}

		var maxPriority int
		if err := tx.Model(&models.SavingsGoal{}).Where("user_id = ?", userID).
			Select("COALESCE(MAX(priority), 0)").Scan(&maxPriority).Error; err != nil {
			return err
		}
		for i := range recs.Goals {
			recs.Goals[i].Priority += maxPriority
		}

		if len(recs.Income) > 0 {
			if err := tx.Create(&recs.Income).Error; err != nil {
				return fmt.Errorf("insert income: %w", err)
			}
		}
		if len(categories) > 0 {
			if err := tx.Create(&categories).Error; err != nil {
				return fmt.Errorf("insert categories: %w", err)
			}
		}
		if len(recs.Transactions) > 0 {
			if err := tx.Create(&recs.Transactions).Error; err != nil {
				return fmt.Errorf("insert transactions: %w", err)
			}
		}
		if len(recs.Goals) > 0 {
			if err := tx.Create(&recs.Goals).Error; err != nil {
				return fmt.Errorf("insert goals: %w", err)
			}
		}
		return nil
	})
}
