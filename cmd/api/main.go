package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"guard-monitor/backend/internal/config"
	"guard-monitor/backend/internal/domain/checkin"
	"guard-monitor/backend/internal/domain/employee"
	"guard-monitor/backend/internal/domain/report"
	"guard-monitor/backend/internal/firebase"
	"guard-monitor/backend/internal/geocode"
	apihttp "guard-monitor/backend/internal/http"
	"guard-monitor/backend/internal/pdf"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	cfg := config.Load()

	clients, err := firebase.NewClients(ctx, cfg)
	if err != nil {
		log.Fatalf("firebase init failed: %v", err)
	}
	defer clients.Close()

	// Repositories
	employeeRepo := employee.NewRepo(clients.Firestore)
	checkinRepo := checkin.NewRepo(clients.Firestore)

	// Services
	resolver := geocode.NewResolver(cfg.GeocodeUserAgent)
	employeeSvc := employee.NewService(employeeRepo, clients.Auth)
	checkinSvc := checkin.NewService(checkinRepo, employeeRepo)
	reportSvc := report.NewService(checkinRepo, employeeRepo, resolver)

	router := apihttp.NewRouter(apihttp.RouterDeps{
		Cfg:         cfg,
		AuthClient:  clients.Auth,
		EmployeeSvc: employeeSvc,
		CheckinSvc:  checkinSvc,
		ReportSvc:   reportSvc,
		Renderer:    pdf.NewRenderer(),
		Uploads:     apihttp.NewUploads(cfg),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// graceful shutdown
	go func() {
		log.Printf("API listening on :%s (project=%s)", cfg.Port, cfg.ProjectID)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("shutting down...")
	_ = srv.Shutdown(ctxShutdown)
}
