package config

type Barcode struct {
	MaxBatchSize int `env:"BARCODE_MAX_BATCH_SIZE" envDefault:"100"`
	CacheSize    int `env:"BARCODE_CACHE_SIZE" envDefault:"128"`
}
