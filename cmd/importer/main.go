// 命令行批量导入工具：绕过HTTP直接把表格文件灌进库。
// 用法：
//
//	importer -mode components inventory.xlsx
//	importer -mode bom -analyze boms.csv
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/bitfantasy/pcb-stock/internal/config"
	"github.com/bitfantasy/pcb-stock/internal/model/entity"
	"github.com/bitfantasy/pcb-stock/internal/service"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	mode := flag.String("mode", "auto", "import mode: auto, components or bom")
	analyze := flag.Bool("analyze", false, "only analyze column mapping, do not import")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: importer [-mode components|bom] [-analyze] <file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	file, err := os.Open(path)
	if err != nil {
		logger.Fatal("Failed to open file", zap.String("path", path), zap.Error(err))
	}
	defer file.Close()

	// 命令行工具不走对象存储归档
	var importService *service.ImportService

	if *analyze {
		importService = service.NewImportService(nil, nil, "", "", logger)
		previews, err := importService.AnalyzeWorkbook(path, file)
		if err != nil {
			logger.Fatal("Analyze failed", zap.Error(err))
		}
		printJSON(previews)
		return
	}

	db, err := openDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}
	if err := entity.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	importService = service.NewImportService(db, nil, "", "", logger)

	ctx := context.Background()
	var summary *service.ImportSummary
	switch *mode {
	case "components":
		summary, err = importService.ImportComponents(ctx, path, file)
	case "bom":
		summary, err = importService.ImportBOM(ctx, path, file)
	case "auto":
		summary, err = importService.ImportWorkbook(ctx, path, file, service.ImportOptions{})
	default:
		logger.Fatal("Unknown mode", zap.String("mode", *mode))
	}
	if err != nil {
		logger.Fatal("Import failed", zap.Error(err))
	}
	printJSON(summary)
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
		cfg.Database.Password, cfg.Database.DBName, cfg.Database.SSLMode)
	return gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
