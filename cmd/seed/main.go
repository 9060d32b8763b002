// 开发环境造数：一个演示账号 + 一批随机线索
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"

	"go-lead-crm/internal/core/config"
	"go-lead-crm/internal/core/database"
	"go-lead-crm/internal/domain"
	"go-lead-crm/internal/repo"
	"go-lead-crm/pkg/utils"
)

const (
	demoEmail    = "demo@example.com"
	demoPassword = "password123"
	leadCount    = 40
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Lead{}); err != nil {
		log.Fatalf("automigrate: %v", err)
	}

	ctx := context.Background()
	users := repo.NewUserRepo(db)
	leads := repo.NewLeadRepo(db)

	u, err := users.FindByEmail(ctx, demoEmail)
	if err != nil {
		log.Fatalf("find demo user: %v", err)
	}
	if u == nil {
		hash, err := utils.HashPassword(demoPassword)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		u = &domain.User{
			ID:           utils.NewID(),
			Name:         "Demo User",
			Email:        demoEmail,
			PasswordHash: hash,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("create demo user: %v", err)
		}
		log.Printf("created demo user %s / %s", demoEmail, demoPassword)
	}

	names := []string{"Ann Lee", "Bob Chan", "Carol Wu", "David Kim", "Eva Sun", "Frank Zhao", "Grace Lin", "Henry Gao"}
	for i := 0; i < leadCount; i++ {
		l := &domain.Lead{
			ID:        utils.NewID(),
			Name:      names[rand.Intn(len(names))],
			Email:     fmt.Sprintf("lead%02d@example.com", i),
			Phone:     fmt.Sprintf("+86 138%08d", rand.Intn(100000000)),
			Source:    domain.LeadSources[rand.Intn(len(domain.LeadSources))],
			Status:    domain.LeadStatuses[rand.Intn(len(domain.LeadStatuses))],
			Notes:     "seeded",
			CreatedBy: u.ID,
			CreatedAt: time.Now().AddDate(0, 0, -rand.Intn(60)),
		}
		if err := leads.Create(ctx, l); err != nil {
			log.Fatalf("create lead: %v", err)
		}
	}
	log.Printf("seeded %d leads for %s", leadCount, demoEmail)
}
