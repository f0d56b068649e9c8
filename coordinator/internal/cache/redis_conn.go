package cache

import (
	"log"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient crea un cliente a partir de REDIS_ADDR, REDIS_PASSWORD y REDIS_DB.
// Devuelve nil si REDIS_ADDR no está definida: el registro en Redis es opcional.
func NewRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}
	pass := os.Getenv("REDIS_PASSWORD") // opcional
	db := getint("REDIS_DB", 0)

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	log.Printf("[REDIS] Conectando a %s (DB %d)", addr, db)
	return client
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
