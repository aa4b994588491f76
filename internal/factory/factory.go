package factory

import (
	"fmt"

	"go-screen-interpreter/internal/config"
	"go-screen-interpreter/internal/ocr"
	"go-screen-interpreter/internal/storage"
	"go-screen-interpreter/internal/textnorm"
)

// StorageType represents different screenshot store backends
type StorageType string

const (
	// LocalStorage writes to a directory on disk
	LocalStorage StorageType = config.StoreLocal
	// AzureStorage uploads to Azure Blob Storage
	AzureStorage StorageType = config.StoreAzure
	// NoStorage discards screenshots
	NoStorage StorageType = config.StoreNone
)

// StorageFactory creates screenshot stores
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.ScreenshotStore, error)
}

type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a storage factory reading backend settings from cfg
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a store based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.ScreenshotStore, error) {
	switch storageType {
	case LocalStorage:
		return storage.NewLocalStore(f.cfg.ScreenshotDir)
	case AzureStorage:
		return storage.NewAzureStore(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey, f.cfg.AzureStorageContainer)
	case NoStorage:
		return storage.NewNopStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// EngineFactory creates OCR engines
type EngineFactory interface {
	CreateEngine() (ocr.Engine, error)
}

type engineFactory struct {
	cfg *config.Config
}

func NewEngineFactory(cfg *config.Config) EngineFactory {
	return &engineFactory{cfg: cfg}
}

// CreateEngine returns the Tesseract engine for the configured language
func (f *engineFactory) CreateEngine() (ocr.Engine, error) {
	return ocr.NewTesseractEngine(f.cfg.OCRLanguage, f.cfg.TessdataPrefix)
}

// TextFactory builds the read-only text normalization resources
type TextFactory interface {
	CreateNormalizer() (*textnorm.Normalizer, error)
}

type textFactory struct {
	cfg *config.Config
}

func NewTextFactory(cfg *config.Config) TextFactory {
	return &textFactory{cfg: cfg}
}

// CreateNormalizer loads DICTIONARY_PATH when set, else the built-in word list
func (f *textFactory) CreateNormalizer() (*textnorm.Normalizer, error) {
	dict := textnorm.DefaultDictionary()
	if f.cfg.DictionaryPath != "" {
		loaded, err := textnorm.LoadDictionaryFile(f.cfg.DictionaryPath)
		if err != nil {
			return nil, err
		}
		dict = loaded
	}
	return textnorm.NewNormalizer(textnorm.NewSpeller(dict), textnorm.NewNoiseSet(f.cfg.NoiseWords)), nil
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	StorageFactory StorageFactory
	EngineFactory  EngineFactory
	TextFactory    TextFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		StorageFactory: NewStorageFactory(cfg),
		EngineFactory:  NewEngineFactory(cfg),
		TextFactory:    NewTextFactory(cfg),
	}
}
