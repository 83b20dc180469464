package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jstittsworth/lineup-editor/internal/models"
	"github.com/jstittsworth/lineup-editor/internal/pitch"
	"github.com/jstittsworth/lineup-editor/internal/services"
	"github.com/jstittsworth/lineup-editor/pkg/config"
	"github.com/jstittsworth/lineup-editor/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	command := os.Args[1]

	switch command {
	case "up":
		if err := services.AutoMigrate(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		logrus.Info("Migrations completed successfully")

	case "down":
		if err := dropTables(db); err != nil {
			logrus.Fatalf("Failed to drop tables: %v", err)
		}
		logrus.Info("Tables dropped successfully")

	case "seed":
		if err := services.AutoMigrate(db); err != nil {
			logrus.Fatalf("Failed to run migrations: %v", err)
		}
		if err := seedData(db); err != nil {
			logrus.Fatalf("Failed to seed data: %v", err)
		}
		logrus.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

func dropTables(db *database.DB) error {
	// Children first so foreign keys never block a drop
	return db.Migrator().DropTable(&models.MatchSnapshot{}, &models.RosterPlayer{}, &models.Match{})
}

type seedPlayer struct {
	number int
	name   string
	slot   string
	prefs  []string
}

func squad(prefix string, entries []seedPlayer) (lineup, bench []pitch.Player) {
	for _, e := range entries {
		p := pitch.Player{
			ID:                 fmt.Sprintf("%s-%d", prefix, e.number),
			Name:               e.name,
			Number:             e.number,
			Position:           e.slot,
			PreferredPositions: e.prefs,
		}
		if e.slot == "" {
			bench = append(bench, p)
		} else {
			lineup = append(lineup, p)
		}
	}
	return lineup, bench
}

func seedData(db *database.DB) error {
	homeLineup, homeBench := squad("home", []seedPlayer{
		{1, "Ederson", "GK", []string{"GK"}},
		{2, "Walker", "RB", []string{"RB"}},
		{3, "Dias", "CB1", []string{"CB1", "CB2"}},
		{5, "Stones", "CB2", []string{"CB2", "CDM"}},
		{6, "Ake", "LB", []string{"LB", "CB1"}},
		{8, "Kovacic", "CM1", []string{"CM1", "CM2"}},
		{16, "Rodri", "CM2", []string{"CM2", "CDM"}},
		{47, "Foden", "LW", []string{"LW", "CAM"}},
		{20, "Silva", "RW", []string{"RW", "CAM"}},
		{9, "Haaland", "ST1", []string{"ST1", "ST"}},
		{19, "Alvarez", "ST2", []string{"ST2", "ST"}},
		{31, "Ortega", "", []string{"GK"}},
		{25, "Akanji", "", []string{"CB1", "CB2"}},
		{10, "Grealish", "", []string{"LW"}},
		{17, "De Bruyne", "", []string{"CM1", "CAM"}},
	})
	awayLineup, awayBench := squad("away", []seedPlayer{
		{24, "Onana", "GK", []string{"GK"}},
		{20, "Dalot", "RB", []string{"RB"}},
		{5, "Maguire", "CB1", []string{"CB1"}},
		{6, "Martinez", "CB2", []string{"CB2", "LB"}},
		{23, "Shaw", "LB", []string{"LB"}},
		{18, "Casemiro", "CDM", []string{"CDM"}},
		{14, "Eriksen", "CM1", []string{"CM1"}},
		{8, "Fernandes", "CM2", []string{"CM2", "CAM"}},
		{10, "Rashford", "LW", []string{"LW", "ST"}},
		{11, "Hojlund", "ST", []string{"ST"}},
		{17, "Garnacho", "RW", []string{"RW", "LW"}},
		{1, "Bayindir", "", []string{"GK"}},
		{2, "Lindelof", "", []string{"CB1", "CB2"}},
		{37, "Mainoo", "", []string{"CM1", "CDM"}},
		{21, "Antony", "", []string{"RW"}},
	})

	board, err := pitch.ValidateRoster(pitch.Board{
		Formations:  pitch.Formations{pitch.TeamA: "4-4-2", pitch.TeamB: "4-3-3"},
		Lineups:     pitch.Squads{pitch.TeamA: homeLineup, pitch.TeamB: awayLineup},
		Substitutes: pitch.Squads{pitch.TeamA: homeBench, pitch.TeamB: awayBench},
	}, nil)
	if err != nil {
		return fmt.Errorf("invalid seed roster: %w", err)
	}

	match := &models.Match{
		Name:      "Manchester Derby",
		TeamAName: "City",
		TeamBName: "United",
		KickoffAt: time.Now().Add(2 * time.Hour),
	}
	repo := services.NewTimelineRepository(db)
	if err := repo.CreateMatch(context.Background(), match, board); err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	logrus.Infof("Seeded match %s (%s) with %d players", match.Name, match.ID, len(board.Roster(pitch.TeamA))+len(board.Roster(pitch.TeamB)))
	return nil
}
