package recommender

import (
	"encoding/gob"
	"log"
	"os"
	"path/filepath"
)

// Keys de los tres artifacts derivados.
const (
	KeyContentSim = "content_similarity"
	KeyUserItem   = "user_item_matrix"
	KeyUserSim    = "user_similarity"
)

// ArtifactStore guarda matrices precalculadas en disco (gob) para no
// recalcularlas en cada arranque. Es solo una optimización: cualquier
// falla de lectura o escritura degrada a recomputar en memoria, nunca
// tumba un request.
type ArtifactStore struct {
	dir string
}

func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

func (s *ArtifactStore) path(key string) string {
	return filepath.Join(s.dir, key+".gob")
}

// Load intenta leer un artifact en dest. Devuelve false si no existe o
// está corrupto (se loguea y se trata como ausente, jamás como fatal).
func (s *ArtifactStore) Load(key string, dest any) bool {
	f, err := os.Open(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[artifacts] no se pudo abrir %s: %v", key, err)
		}
		return false
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(dest); err != nil {
		log.Printf("[artifacts] %s corrupto (%v), se recalculará", key, err)
		return false
	}
	return true
}

// Save persiste un artifact: escribe a un archivo temporal y renombra
// atómico, así un lector nunca ve un archivo a medias. Falla logueada,
// no fatal (el proceso sigue con la versión en memoria).
func (s *ArtifactStore) Save(key string, artifact any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		log.Printf("[artifacts] no se pudo crear %s: %v", s.dir, err)
		return err
	}

	tmp, err := os.CreateTemp(s.dir, key+".tmp-*")
	if err != nil {
		log.Printf("[artifacts] no se pudo escribir %s: %v", key, err)
		return err
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(artifact); err != nil {
		tmp.Close()
		log.Printf("[artifacts] error serializando %s: %v", key, err)
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		log.Printf("[artifacts] rename de %s falló: %v", key, err)
		return err
	}
	return nil
}

// Exists reporta si hay un artifact persistido para la key (status admin).
func (s *ArtifactStore) Exists(key string) bool {
	_, err := os.Stat(s.path(key))
	return err == nil
}
