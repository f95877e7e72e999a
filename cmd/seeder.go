package cmd

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		db, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		defer db.Close()

		if clearData {
			clearTables(db)
		}

		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		departments := []string{"Engineering", "Sales", "People Operations"}
		for _, name := range departments {
			var exists int
			if err := db.QueryRow("SELECT 1 FROM departments WHERE name = $1", name).Scan(&exists); err == nil {
				continue
			}
			if _, err := db.Exec("INSERT INTO departments (name, created_at, updated_at) VALUES ($1, now(), now())", name); err != nil {
				log.Fatalf("failed to insert department %s: %v", name, err)
			}
			fmt.Println("Seeded department:", name)
		}

		var engineeringID int64
		if err := db.QueryRow("SELECT id FROM departments WHERE name = $1", "Engineering").Scan(&engineeringID); err != nil {
			log.Fatalf("failed to lookup Engineering department: %v", err)
		}
		var peopleOpsID int64
		if err := db.QueryRow("SELECT id FROM departments WHERE name = $1", "People Operations").Scan(&peopleOpsID); err != nil {
			log.Fatalf("failed to lookup People Operations department: %v", err)
		}

		teams := []string{"Platform", "Web"}
		for _, name := range teams {
			var exists int
			if err := db.QueryRow("SELECT 1 FROM teams WHERE name = $1 AND department_id = $2", name, engineeringID).Scan(&exists); err == nil {
				continue
			}
			if _, err := db.Exec("INSERT INTO teams (name, department_id, created_at, updated_at) VALUES ($1, $2, now(), now())", name, engineeringID); err != nil {
				log.Fatalf("failed to insert team %s: %v", name, err)
			}
			fmt.Println("Seeded team:", name)
		}

		var platformID int64
		if err := db.QueryRow("SELECT id FROM teams WHERE name = $1 AND department_id = $2", "Platform", engineeringID).Scan(&platformID); err != nil {
			log.Fatalf("failed to lookup Platform team: %v", err)
		}

		users := []struct {
			Username       string
			Email          string
			FullName       string
			Role           string
			EmployeeNumber string
			DepartmentID   *int64
			TeamID         *int64
		}{
			{"hr_admin", "hr@example.com", "Hana Reyes", "hr", "E0001", &peopleOpsID, nil},
			{"eng_manager", "manager@example.com", "Miyuki Tanaka", "manager", "E0002", &engineeringID, nil},
			{"employee1", "employee1@example.com", "Kenji Sato", "employee", "E0003", &engineeringID, &platformID},
			{"employee2", "employee2@example.com", "Aoi Yamada", "employee", "E0004", &engineeringID, &platformID},
		}

		for _, u := range users {
			var exists int
			if err := db.QueryRow("SELECT 1 FROM users WHERE username = $1", u.Username).Scan(&exists); err == nil {
				fmt.Println("user already exists:", u.Username)
				continue
			}
			if _, err := db.Exec(
				`INSERT INTO users (username, email, password_hash, role, employee_number, department_id, team_id, full_name, gender, is_active, created_at, updated_at)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 'no_answer', true, now(), now())`,
				u.Username, u.Email, string(hash), u.Role, u.EmployeeNumber, u.DepartmentID, u.TeamID, u.FullName,
			); err != nil {
				log.Fatalf("failed to insert user %s: %v", u.Username, err)
			}
			fmt.Println("Seeded user:", u.Username)
		}

		var managerID int64
		if err := db.QueryRow("SELECT id FROM users WHERE username = $1", "eng_manager").Scan(&managerID); err != nil {
			log.Fatalf("failed to lookup manager user id: %v", err)
		}

		if _, err := db.Exec("UPDATE departments SET manager_id = $1, updated_at = now() WHERE id = $2 AND manager_id IS NULL", managerID, engineeringID); err != nil {
			log.Fatalf("failed to assign Engineering manager: %v", err)
		}
		if _, err := db.Exec("UPDATE teams SET manager_id = $1, updated_at = now() WHERE id = $2 AND manager_id IS NULL", managerID, platformID); err != nil {
			log.Fatalf("failed to assign Platform manager: %v", err)
		}

		fmt.Println("Seed data loaded; every account uses the password:", password)
	},
}

// clearTables wipes seedable data in dependency order.
func clearTables(db *sqlx.DB) {
	tables := []string{
		"notifications",
		"break_records",
		"attendance_records",
		"applications",
		"users",
		"teams",
		"departments",
	}
	for _, t := range tables {
		if _, err := db.Exec("DELETE FROM " + t); err != nil {
			log.Fatalf("failed to clear table %s: %v", t, err)
		}
	}
	fmt.Println("Cleared existing data")
}
