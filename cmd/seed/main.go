package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/app"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/apperr"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/banners"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/config"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/db"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/doctors"
	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/specializations"
)

type seedDoctor struct {
	Name           string
	Specialization string
	Qualification  string
	Experience     int
	Fee            float64
	OPD            string
}

var seedSpecializations = []specializations.UpsertRequest{
	{Name: "General Dentistry", Description: "Routine dental care, checkups, and cleaning", Icon: "tooth"},
	{Name: "Orthodontics", Description: "Braces and aligners for teeth straightening", Icon: "braces"},
	{Name: "Endodontics", Description: "Root canal treatments", Icon: "root"},
	{Name: "Pediatric Dentistry", Description: "Dental care for children", Icon: "child"},
	{Name: "Oral & Maxillofacial Surgery", Description: "Surgical procedures for teeth, jaws and face", Icon: "surgery"},
	{Name: "Prosthodontics", Description: "Designing and fitting artificial replacements for teeth", Icon: "implant"},
	{Name: "Periodontics", Description: "Treatment of gum diseases", Icon: "activity"},
	{Name: "Implantology", Description: "Dental implants", Icon: "screw"},
}

var seedDoctors = []seedDoctor{
	{"K.P. Senthamarai Kannan", "Orthodontics", "MDS (Orthodontist), FPFA (USA)", 20, 800, "10:00 AM - 1:00 PM, 5:00 PM - 8:00 PM"},
	{"S. Vijayapriya", "General Dentistry", "BDS, FPFA (USA)", 15, 500, "9:00 AM - 1:00 PM, 4:00 PM - 8:00 PM"},
	{"J. Arunkumar", "Oral & Maxillofacial Surgery", "MDS (Oral & Maxillofacial Surgeon)", 12, 1000, "By Appointment"},
	{"G. Rajkumar", "Prosthodontics", "MDS (Prosthodontist)", 12, 700, "4:00 PM - 8:00 PM"},
	{"M. Jaikumar", "Endodontics", "MDS (Endodontist)", 10, 700, "4:00 PM - 8:00 PM"},
	{"Basil Mathews", "Pediatric Dentistry", "MDS (Pedodontist)", 8, 600, "By Appointment"},
	{"Anuradha", "Endodontics", "MDS (Endodontist)", 8, 700, "10:00 AM - 2:00 PM"},
	{"V. T. Arun Varghese", "Periodontics", "MDS (Periodontist)", 10, 600, "By Appointment"},
	{"Shahid Basha", "Implantology", "BDS (Implantologist)", 10, 800, "By Appointment"},
	{"Dhanakoti", "General Dentistry", "BDS", 5, 300, "9:00 AM - 5:00 PM"},
	{"Manjula", "General Dentistry", "BDS", 5, 300, "9:00 AM - 5:00 PM"},
	{"Sri Hari", "General Dentistry", "BDS", 5, 300, "9:00 AM - 5:00 PM"},
}

var seedBanners = []banners.UpsertRequest{
	{Title: "Advanced Dental Care", Description: "State-of-the-art facilities for your smile", ButtonText: "Book Now", Order: 1},
	{Title: "Painless Root Canal", Description: "Single-sitting treatment by specialists", ButtonText: "Learn More", Order: 2},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.RequireDatabase(); err != nil {
		log.Fatal(err)
	}

	if _, err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.Connect(ctx, cfg.DatabaseURL, 2)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	svc := app.New(cfg, pool)

	specIDs := make(map[string]int64, len(seedSpecializations))
	existing, err := svc.Specializations.List(ctx, false)
	if err != nil {
		log.Fatal(err)
	}
	for _, s := range existing {
		specIDs[s.Name] = s.ID
	}
	for _, req := range seedSpecializations {
		if _, ok := specIDs[req.Name]; ok {
			continue
		}
		created, err := svc.Specializations.Create(ctx, req)
		if err != nil {
			log.Fatalf("seed specialization %s: %v", req.Name, err)
		}
		specIDs[created.Name] = created.ID
		log.Printf("seed specialization: %s", created.Name)
	}

	for _, d := range seedDoctors {
		if _, err := svc.Doctors.FindByName(ctx, d.Name); err == nil {
			continue
		} else if !apperr.IsNotFound(err) {
			log.Fatalf("seed doctor %s: %v", d.Name, err)
		}

		req := doctors.UpsertRequest{
			Name:            d.Name,
			Specialization:  d.Specialization,
			Qualification:   d.Qualification,
			Experience:      d.Experience,
			ConsultationFee: d.Fee,
			OPDTimings:      d.OPD,
			Languages:       []string{"English", "Tamil"},
			Bio:             "Dr. " + d.Name + " is a specialist in " + d.Specialization + ".",
		}
		if id, ok := specIDs[d.Specialization]; ok {
			req.SpecializationID = &id
		}
		if _, err := svc.Doctors.Create(ctx, req); err != nil {
			log.Fatalf("seed doctor %s: %v", d.Name, err)
		}
		log.Printf("seed doctor: %s", d.Name)
	}

	current, err := svc.Banners.List(ctx, false)
	if err != nil {
		log.Fatal(err)
	}
	if len(current) == 0 {
		for _, b := range seedBanners {
			if _, err := svc.Banners.Create(ctx, b); err != nil {
				log.Fatalf("seed banner %s: %v", b.Title, err)
			}
		}
		log.Printf("seed banners: %d", len(seedBanners))
	}

	email := envOrDefault("ADMIN_EMAIL", "admin@sreesarojaa.clinic")
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		log.Printf("seed admin: ADMIN_PASSWORD missing, skipping (%s)", email)
	} else {
		_, err := svc.Admins.Register(ctx, email, envOrDefault("ADMIN_NAME", "Super Admin"), password)
		switch {
		case err == nil:
			log.Printf("seed admin: %s", email)
		case apperr.IsConflict(err):
			log.Printf("seed admin: %s already exists", email)
		default:
			log.Fatalf("seed admin error for %s: %v", email, err)
		}
	}

	log.Println("seed completed")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
