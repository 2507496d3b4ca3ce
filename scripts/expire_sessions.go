// 手动触发超时会话清理脚本
//
// 该功能已集成到主应用的后台定时任务中（每秒巡检一次）。
// 此脚本仅用于手动触发，例如服务停机期间积压了大量到期会话时。
//
// 用法: go run scripts/expire_sessions.go

package main

import (
	"elearn_backend/internal/config"
	"elearn_backend/internal/repository"
	"elearn_backend/internal/service"
	"elearn_backend/pkg/database"
	"elearn_backend/pkg/logger"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

func main() {
	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	questionRepo := repository.NewQuestionRepository(db)
	resultRepo := repository.NewResultRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	testRepo := repository.NewTestRepository(db)

	grading := service.NewGradingService(questionRepo, resultRepo, courseRepo)
	sessions := service.NewTestSessionService(testRepo, grading)

	n := sessions.ExpireOverdueSessions()
	log.Printf("清理完成，共自动交卷 %d 个超时会话", n)
}
