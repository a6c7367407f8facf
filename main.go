package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"

	"SAMS-backend/internal/attendance"
	"SAMS-backend/internal/directory"
	"SAMS-backend/internal/od"
	"SAMS-backend/internal/platform/auth"
	"SAMS-backend/internal/platform/db"
	"SAMS-backend/internal/routine"
	"SAMS-backend/internal/session"
)

func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	secret := []byte(cfg.Auth.JWTSecret)

	// 協調サービスはディレクトリを起点にインタフェースで注入する
	dirSvc := directory.NewService(conn)
	routineSvc := routine.NewService(conn, dirSvc)
	odSvc := od.NewService(conn, dirSvc)
	sessionSvc := session.NewService(conn, routineSvc, dirSvc, odSvc)
	attendanceSvc := attendance.NewService(conn, dirSvc)
	authSvc := auth.NewService(conn, secret)

	// /api/v1
	api := r.Group("/api/v1")
	authed := api.Group("", auth.RequireAuth(secret))
	teacherOnly := authed.Group("", auth.RequireRole("teacher"))
	studentOnly := authed.Group("", auth.RequireRole("student"))

	auth.RegisterRoutes(api, authed, authSvc)

	// セッションのライフサイクルとレポートは教員のみ
	session.RegisterRoutes(teacherOnly, sessionSvc)
	// チェックインは学生、ライブ名簿は教員
	attendance.RegisterStudentRoutes(studentOnly, attendanceSvc)
	attendance.RegisterTeacherRoutes(teacherOnly, attendanceSvc)
	// 時間割
	routine.RegisterTeacherRoutes(teacherOnly, routineSvc)
	routine.RegisterStudentRoutes(studentOnly, routineSvc)
	// OD申請（承認系はAdvisor判定をservice側で行う）
	od.RegisterStudentRoutes(studentOnly, odSvc)
	od.RegisterAdvisorRoutes(teacherOnly, odSvc)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	var certFile, keyFile string
	if mode == "dev" {
		certFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Key)
	} else {
		certFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Key)
	}

	go func() {
		log.Printf("[INFO] listening on https://0.0.0.0%s", cfg.Addr)
		if err := srv.ListenAndServeTLS(certFile, keyFile); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
