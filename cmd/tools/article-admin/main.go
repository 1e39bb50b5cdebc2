// cmd/tools/article-admin/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"article-pipeline/internal/api"
	"article-pipeline/internal/common/config"
	"article-pipeline/internal/common/database"
	"article-pipeline/internal/common/logger"
	costestimator "article-pipeline/internal/generation/cost-estimator"
	"article-pipeline/internal/models"
	"article-pipeline/internal/usage"
)

func main() {
	tokenCmd := flag.NewFlagSet("token", flag.ExitOnError)
	verifyCmd := flag.NewFlagSet("verify", flag.ExitOnError)
	estimateCmd := flag.NewFlagSet("estimate", flag.ExitOnError)
	usageCmd := flag.NewFlagSet("usage", flag.ExitOnError)

	// token flags
	userID := tokenCmd.String("user", "", "User id placed in the token subject")
	role := tokenCmd.String("role", "EDITOR", "Role claim (e.g., ADMIN, EDITOR)")
	ttl := tokenCmd.Duration("ttl", 24*time.Hour, "Token lifetime")

	// verify flags
	verifyToken := verifyCmd.String("token", "", "Bearer token to verify")

	// estimate flags
	tier := estimateCmd.String("tier", "base", "Model tier (base, standard, pro)")
	inputTokens := estimateCmd.Int("in", 0, "Input tokens")
	outputTokens := estimateCmd.Int("out", 0, "Output tokens")

	// usage flags
	day := usageCmd.String("day", time.Now().UTC().Format(usage.DayLayout), "Day to report (YYYY-MM-DD)")
	usageUser := usageCmd.String("user", "", "Restrict the report to one user")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "token":
		tokenCmd.Parse(os.Args[2:])
		if *userID == "" {
			fmt.Println("Error: user is required for token.")
			tokenCmd.Usage()
			os.Exit(1)
		}
		cfg := mustLoadConfig()
		token, err := api.SignToken(cfg.Auth.JWTSecret, *userID, *role, *ttl)
		if err != nil {
			fmt.Printf("Error signing token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)

	case "verify":
		verifyCmd.Parse(os.Args[2:])
		if *verifyToken == "" {
			fmt.Println("Error: token is required for verify.")
			verifyCmd.Usage()
			os.Exit(1)
		}
		cfg := mustLoadConfig()
		principal, err := api.ParseToken(cfg.Auth.JWTSecret, *verifyToken)
		if err != nil {
			fmt.Printf("Token rejected: %v\n", err)
			os.Exit(1)
		}
		printJSON(principal)

	case "estimate":
		estimateCmd.Parse(os.Args[2:])
		cfg := mustLoadConfig()
		table, err := costestimator.PriceTableFromConfig(cfg.Pricing)
		if err != nil {
			fmt.Printf("Invalid price table: %v\n", err)
			os.Exit(1)
		}
		parsed, err := models.ParseModelTier(*tier)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		report, err := costestimator.New(table).Estimate(*inputTokens, *outputTokens, parsed)
		if err != nil {
			fmt.Printf("Error estimating cost: %v\n", err)
			os.Exit(1)
		}
		printJSON(report)

	case "usage":
		usageCmd.Parse(os.Args[2:])
		cfg := mustLoadConfig()
		if err := printUsage(cfg, *day, *usageUser); err != nil {
			fmt.Printf("Error reading usage: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func printUsage(cfg *config.Config, day, userID string) error {
	if !cfg.Database.Redis.Enabled {
		return fmt.Errorf("database.redis is not enabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rdb := database.NewRedis(cfg.Database.Redis)
	defer rdb.Close()
	if err := rdb.Ping(ctx); err != nil {
		return err
	}

	ledger := usage.NewLedger(rdb.Client, cfg.Database.Redis.RetentionDays, logger.NewNoOpLogger())

	var (
		daily *usage.DailyUsage
		err   error
	)
	if userID != "" {
		daily, err = ledger.UserDaily(ctx, day, userID)
	} else {
		daily, err = ledger.Daily(ctx, day)
	}
	if err != nil {
		return err
	}
	printJSON(daily)
	return nil
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Error encoding output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

func help() {
	fmt.Println("Usage: article-admin <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  token     Sign a bearer token for the generation API")
	fmt.Println("  verify    Verify a bearer token and print its principal")
	fmt.Println("  estimate  Estimate the cost of a completion")
	fmt.Println("  usage     Print the usage ledger for a day")
	fmt.Println("  help      Show this help message")
}
