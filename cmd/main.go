package main

import (
	"log"
	"os"

	"nutribot/config"
	"nutribot/controllers"
	"nutribot/routes"
	"nutribot/services"
	"nutribot/utils"
)

func main() {
	var store services.Store
	if os.Getenv("DB_HOST") != "" {
		config.InitDB()
		store = services.NewGormStore(config.DB)
	} else {
		// Development fallback, no database required.
		if err := config.Load(); err != nil {
			log.Fatalf("Invalid settings: %v", err)
		}
		log.Printf("DB_HOST not set, using in-memory store")
		store = services.NewMemoryStore()
	}

	quota := services.NewQuotaService(store, config.App.FreeAnalysisLimit)
	entries := services.NewEntryService(store, config.App.Brackets)
	calendar := services.NewCalendarService(store)
	payments := services.NewPaymentService(&config.App)

	rek, err := services.NewRekognitionService()
	if err != nil {
		log.Fatalf("Failed to init recognition: %v", err)
	}
	recognizer := services.NewFoodRecognizer(rek, services.NewNutritionAPIService())

	dialog := services.NewDialogService(store, quota, entries, calendar, payments, recognizer, &config.App)
	dialog.Hub = services.NewProgressHub()
	if os.Getenv("S3_BUCKET") != "" {
		utils.InitS3()
		dialog.UploadPhoto = utils.UploadMealPhoto
	}

	r := routes.SetupRouter(routes.Controllers{
		Events:        controllers.NewEventController(store, dialog),
		Stats:         controllers.NewStatsController(store, entries, calendar),
		Profile:       controllers.NewProfileController(store),
		Subscriptions: controllers.NewSubscriptionController(store, quota),
		Admin:         controllers.NewAdminController(store, &config.App),
		Realtime:      controllers.NewRealtimeController(store, dialog.Hub),
	}, &config.App)

	addr := os.Getenv("LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	if err := r.Run(addr); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
