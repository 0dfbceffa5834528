package repos

import (
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// OpenDB opens the sqlite store, migrates it and seeds demo data.
func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: keeps :memory: databases alive and serialises writers.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		return nil, err
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}
	if err := seedCatalog(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// seedCatalog inserts demo products if they don't already exist.
// Safe to run on every startup (idempotent).
func seedCatalog(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM product`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	log.Println("[seed] inserting demo products")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		INSERT INTO product(id, title, meta_title, price, discount, thumbnail, seller_id) VALUES
		  ('tee-001',  'Linen Tee',        'linen-tee',        25.00, 0,    'products/tee-001/thumb.jpg',  'seller-north'),
		  ('mug-002',  'Stoneware Mug',    'stoneware-mug',    12.50, 2.50, 'products/mug-002/thumb.jpg',  'seller-north'),
		  ('lamp-003', 'Brass Desk Lamp',  'brass-desk-lamp',  89.99, 0,    'products/lamp-003/thumb.jpg', 'seller-south'),
		  ('sock-004', 'Wool Socks (pair)', 'wool-socks',      9.95,  0,    'products/sock-004/thumb.jpg', 'seller-south')
	`); err != nil {
		return err
	}
	return tx.Commit()
}

// seedUsers ensures demo users exist (idempotent). Only alice has an address.
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Avatar, Hash string
	}
	mk := func(id, email, name, role, avatar, raw string) (u, error) {
		h, err := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		if err != nil {
			return u{}, err
		}
		return u{ID: id, Email: email, Name: name, Role: role, Avatar: avatar, Hash: string(h)}, nil
	}

	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	users := make([]u, 0, 3)
	for _, row := range [][6]string{
		{"u-alice", "alice@storecart.test", "Alice", "USER", "https://cdn.storecart.test/avatars/alice.png", "Passw0rd!"},
		{"u-bob", "bob@storecart.test", "Bob", "USER", "", "Passw0rd!"},
		{"u-admin", "admin@storecart.test", "Admin", "ADMIN", "", "Passw0rd!"},
	} {
		x, err := mk(row[0], row[1], row[2], row[3], row[4], row[5])
		if err != nil {
			return err
		}
		users = append(users, x)
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role,avatar_url)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role, x.Avatar); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`
		INSERT INTO addresses(user_id, phone, line1, city, postal_code, country, updated_at)
		VALUES('u-alice', '+1 555 0100', '12 Market St', 'Springfield', '20742', 'US', CURRENT_TIMESTAMP)
		ON CONFLICT(user_id) DO NOTHING
	`); err != nil {
		return err
	}
	return tx.Commit()
}
