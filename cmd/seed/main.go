package main

// Seeds the catalog with a starter set of genres and movies so a fresh
// environment has something to browse.  Existing movies and genres are
// replaced; user accounts are left untouched.

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/netprime/streaming-catalog/internal/database"
	"github.com/netprime/streaming-catalog/internal/model"
	"github.com/netprime/streaming-catalog/internal/repository"
)

func main() {
	_ = godotenv.Load()

	db, err := database.Open(must("MONGO_URI"), must("MONGO_DB"))
	if err != nil {
		log.Fatalf("mongo connect failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("ensure indexes failed: %v", err)
	}

	if _, err := db.Collection("movies").DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("clear movies failed: %v", err)
	}
	if _, err := db.Collection("genres").DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("clear genres failed: %v", err)
	}

	genres := repository.NewGenreRepo(db)
	movies := repository.NewMovieRepo(db)

	genreID := map[string]primitive.ObjectID{}
	for _, g := range []struct{ name, desc string }{
		{"Action", "High-octane action films"},
		{"Comedy", "Funny and entertaining movies"},
		{"Drama", "Emotional and compelling stories"},
		{"Sci-Fi", "Science fiction and futuristic tales"},
		{"Horror", "Scary and thrilling movies"},
		{"Documentary", "Factual and educational content"},
		{"Adventure", "Exciting adventure stories"},
		{"Romance", "Love stories and romantic tales"},
	} {
		created, err := genres.Create(ctx, g.name, strp(g.desc), nil)
		if err != nil {
			log.Fatalf("seed genre %q failed: %v", g.name, err)
		}
		genreID[g.name] = created.ID
	}

	catalog := []model.Movie{
		{
			Title:         "Shang-Chi and the Legend of the Ten Rings",
			Description:   "Shang-Chi must confront the past he thought he left behind when he is drawn into the web of the mysterious Ten Rings organization.",
			ImageURL:      "/movies/shangchi.webp",
			Genres:        ids(genreID, "Action"),
			Year:          2022,
			Rating:        8.9,
			Duration:      intp(132),
			Director:      strp("Destin Daniel Cretton"),
			Cast:          []string{"Simu Liu", "Awkwafina", "Tony Leung"},
			ContentRating: "TV-MA",
			Featured:      true,
			Trending:      true,
			Popular:       true,
			Tags:          []string{"Action", "Adventure", "Sci-Fi"},
		},
		{
			Title:         "Gladiator II",
			Description:   "A sequel to the epic historical drama following the journey of a new hero in ancient Rome.",
			ImageURL:      "/movies/gladiator2.webp",
			Genres:        ids(genreID, "Action", "Drama"),
			Year:          2024,
			Rating:        8.2,
			Duration:      intp(156),
			Director:      strp("Ridley Scott"),
			Cast:          []string{"Paul Mescal", "Denzel Washington"},
			ContentRating: "R",
			Trending:      true,
			Tags:          []string{"Action", "Drama", "Historical"},
		},
		{
			Title:       "Captain America",
			Description: "The first Avenger rises to save the world.",
			ImageURL:    "/movies/captAmerica.webp",
			Genres:      ids(genreID, "Action", "Sci-Fi"),
			Year:        2011,
			Rating:      7.9,
			Duration:    intp(124),
			Popular:     true,
			Tags:        []string{"Action", "Sci-Fi"},
		},
		{
			Title:       "Avatar",
			Description: "A paraplegic Marine dispatched to the moon Pandora on a unique mission.",
			ImageURL:    "/movies/avatar.webp",
			Genres:      ids(genreID, "Sci-Fi", "Adventure"),
			Year:        2009,
			Rating:      7.8,
			Duration:    intp(162),
			Popular:     true,
			Trending:    true,
			Tags:        []string{"Sci-Fi", "Adventure", "Fantasy"},
		},
		{
			Title:       "Oppenheimer",
			Description: "The story of J. Robert Oppenheimer and the development of the atomic bomb.",
			ImageURL:    "/movies/oppenheimer.webp",
			Genres:      ids(genreID, "Drama"),
			Year:        2023,
			Rating:      8.3,
			Duration:    intp(180),
			Popular:     true,
			Featured:    true,
			Tags:        []string{"Drama", "History", "Biography"},
		},
		{
			Title:       "The Godfather",
			Description: "The aging patriarch of an organized crime dynasty transfers control of his clandestine empire to his youngest son.",
			ImageURL:    "/movies/godfather.webp",
			Genres:      ids(genreID, "Drama"),
			Year:        1972,
			Rating:      9.2,
			Duration:    intp(175),
			Popular:     true,
			Trending:    true,
			Tags:        []string{"Drama", "Crime"},
		},
		{
			Title:       "Wakanda Forever",
			Description: "The kingdom of Wakanda faces a new threat.",
			ImageURL:    "/movies/wakanda.webp",
			Genres:      ids(genreID, "Action", "Sci-Fi"),
			Year:        2022,
			Rating:      7.3,
			Duration:    intp(161),
			Popular:     true,
			Tags:        []string{"Action", "Sci-Fi", "Adventure"},
		},
		{
			Title:       "300",
			Description: "King Leonidas of Sparta and a force of 300 men fight the invading Persian army.",
			ImageURL:    "/movies/300.webp",
			Genres:      ids(genreID, "Action"),
			Year:        2007,
			Rating:      7.6,
			Duration:    intp(117),
			Trending:    true,
			Tags:        []string{"Action", "Historical", "War"},
		},
		{
			Title:       "Blade",
			Description: "A half-vampire, half-human vampire hunter fights to end the conflict between humans and vampires.",
			ImageURL:    "/movies/blade.webp",
			Genres:      ids(genreID, "Action", "Horror"),
			Year:        1998,
			Rating:      7.8,
			Duration:    intp(121),
			Trending:    true,
			Tags:        []string{"Action", "Horror", "Sci-Fi"},
		},
		{
			Title:       "Killers of the Flower Moon",
			Description: "An investigation into a series of murders of wealthy Osage Nation members.",
			ImageURL:    "/movies/killers.webp",
			Genres:      ids(genreID, "Drama"),
			Year:        2023,
			Rating:      7.2,
			Duration:    intp(206),
			Popular:     true,
			Tags:        []string{"Drama", "Crime", "History"},
		},
	}

	for i := range catalog {
		if err := movies.Create(ctx, &catalog[i]); err != nil {
			log.Fatalf("seed movie %q failed: %v", catalog[i].Title, err)
		}
	}

	log.Printf("seeded %d genres and %d movies", len(genreID), len(catalog))
}

// must mirrors the config loader's behavior for the two variables this
// tool needs; the full Config (JWT secret, port) is not required here.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

func ids(byName map[string]primitive.ObjectID, names ...string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(names))
	for _, n := range names {
		out = append(out, byName[n])
	}
	return out
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }
