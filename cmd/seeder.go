package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with departments and an administrator account for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlxDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}
		db, err := initGorm(sqlxDB)
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"notifications", "document_attachments", "document_movements",
				"documents", "users", "departments",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		departments := []struct {
			Name string
			Desc string
		}{
			{"Mesa de Partes", "Recepción y registro de documentos"},
			{"Gerencia", "Gerencia general"},
			{"Recursos Humanos", "Gestión de personal"},
			{"Finanzas", "Contabilidad y presupuesto"},
			{"Legal", "Asesoría jurídica"},
		}

		for _, d := range departments {
			var exists int
			row := db.Raw("SELECT 1 FROM departments WHERE name = ?", d.Name).Row()
			if err := row.Scan(&exists); err == nil {
				continue
			}
			if err := db.Exec(
				"INSERT INTO departments (name, description, created_at, updated_at) VALUES (?, ?, now(), now())",
				d.Name, d.Desc).Error; err != nil {
				log.Fatalf("failed to insert department %s: %v", d.Name, err)
			}
			fmt.Println("Seeded department:", d.Name)
		}

		adminEmail := "admin@sisedoc.gob.pe"
		adminName := "Administrador"
		password := "password"
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

		var exists int
		row := db.Raw("SELECT 1 FROM users WHERE email = ?", adminEmail).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Println("admin user already exists:", adminEmail)
			return
		}

		var deptID int64
		if err := db.Raw("SELECT id FROM departments WHERE name = ?", "Mesa de Partes").Row().Scan(&deptID); err != nil {
			log.Fatalf("failed to lookup department: %v", err)
		}

		if err := db.Exec(
			"INSERT INTO users (email, full_name, password_hash, role, department_id, is_active, created_at, updated_at) VALUES (?, ?, ?, 'admin', ?, true, now(), now())",
			adminEmail, adminName, string(hash), deptID).Error; err != nil {
			log.Fatalf("failed to insert admin user: %v", err)
		}

		fmt.Println("Seeded admin user:", adminEmail)
	},
}
