package scan

import "time"

// Config selects the scanner. An empty ClamdAddr uses the signature scanner only.
type Config struct {
	ClamdAddr    string        `env:"GUARD_CLAMD_ADDR"`
	ClamdNetwork string        `env:"GUARD_CLAMD_NETWORK" envDefault:"tcp"`
	ChunkSize    int           `env:"GUARD_CLAMD_CHUNK_SIZE" envDefault:"65536"`
	DialTimeout  time.Duration `env:"GUARD_CLAMD_DIAL_TIMEOUT" envDefault:"3s"`
}

// New builds a Scanner from cfg. With clamd configured the signature scanner
// still runs first, so the EICAR test file is caught without a round trip.
func New(cfg Config) (Scanner, error) {
	sig, err := NewSignatureScanner(nil)
	if err != nil {
		return nil, err
	}
	if cfg.ClamdAddr == "" {
		return sig, nil
	}
	clamd := NewClamd(cfg.ClamdNetwork, cfg.ClamdAddr,
		WithChunkSize(cfg.ChunkSize),
		WithDialTimeout(cfg.DialTimeout),
	)
	return Chain{sig, clamd}, nil
}
