package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/specialistvlad/contractexplorer/internal/ctxlog"
	"github.com/specialistvlad/contractexplorer/internal/rpc"
	"github.com/specialistvlad/contractexplorer/internal/soroban"
	"github.com/stellar/go/xdr"
	"github.com/tetratelabs/wazero"
)

// DefaultTTL is how long fetched metadata stays cached.
const DefaultTTL = 5 * time.Minute

// LedgerReader reads ledger entries from a Soroban RPC server.
type LedgerReader interface {
	GetLedgerEntries(ctx context.Context, url string, headers map[string]string, keys ...xdr.LedgerKey) (*rpc.LedgerEntries, error)
}

// Fetcher loads contract metadata and caches the results.
type Fetcher struct {
	ledger  LedgerReader
	cache   *bigcache.BigCache
	runtime wazero.Runtime
}

// NewFetcher creates a Fetcher. A non-positive ttl selects DefaultTTL. The
// Fetcher must be closed to release the cache and the wasm runtime.
func NewFetcher(ctx context.Context, ledger LedgerReader, ttl time.Duration) (*Fetcher, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Shards = 16
	cfg.MaxEntriesInWindow = 1024
	cfg.MaxEntrySize = 2048
	cfg.HardMaxCacheSize = 16
	cfg.CleanWindow = time.Minute

	cache, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create metadata cache: %w", err)
	}

	// Modules are only compiled to read their custom sections, never run.
	runtime := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter().WithCustomSections(true))

	return &Fetcher{ledger: ledger, cache: cache, runtime: runtime}, nil
}

// Close releases the cache and the wasm runtime.
func (f *Fetcher) Close(ctx context.Context) error {
	return errors.Join(f.cache.Close(), f.runtime.Close(ctx))
}

func cacheKey(rpcURL, contractID string) string {
	return rpcURL + "|" + contractID
}

// Load returns the metadata of contractID as seen by the RPC server at
// rpcURL, from cache when possible.
func (f *Fetcher) Load(ctx context.Context, contractID, rpcURL string, headers map[string]string) (*Metadata, error) {
	logger := ctxlog.FromContext(ctx).With("contract_id", contractID, "rpc_url", rpcURL)
	key := cacheKey(rpcURL, contractID)

	if raw, err := f.cache.Get(key); err == nil {
		var m Metadata
		if err := json.Unmarshal(raw, &m); err == nil {
			logger.Debug("Metadata served from cache.")
			return &m, nil
		}
	} else if !errors.Is(err, bigcache.ErrEntryNotFound) {
		logger.Warn("Metadata cache read failed.", "error", err)
	}

	m, err := f.fetch(ctx, contractID, rpcURL, headers)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(m); err == nil {
		if err := f.cache.Set(key, raw); err != nil {
			logger.Warn("Metadata cache write failed.", "error", err)
		}
	}
	logger.Debug("Metadata fetched.", "wasm_hash", m.WasmHash, "contract_meta", len(m.ContractMeta), "env_meta", len(m.EnvMeta))
	return m, nil
}

// Invalidate drops the cached metadata of contractID.
func (f *Fetcher) Invalidate(contractID, rpcURL string) {
	_ = f.cache.Delete(cacheKey(rpcURL, contractID))
}

func (f *Fetcher) fetch(ctx context.Context, contractID, rpcURL string, headers map[string]string) (*Metadata, error) {
	id, err := soroban.ContractID(contractID)
	if err != nil {
		return nil, fmt.Errorf("invalid contract id %q: %w", contractID, err)
	}

	instance, err := f.entry(ctx, rpcURL, headers, soroban.ContractInstanceKey(id))
	if err != nil {
		return nil, fmt.Errorf("loading contract instance: %w", err)
	}
	hash, err := soroban.WasmHash(instance)
	if err != nil {
		return nil, err
	}

	codeEntry, err := f.entry(ctx, rpcURL, headers, soroban.ContractCodeKey(hash))
	if err != nil {
		return nil, fmt.Errorf("loading contract code: %w", err)
	}
	code, err := soroban.ContractCode(codeEntry)
	if err != nil {
		return nil, err
	}

	sections, err := f.customSections(ctx, code)
	if err != nil {
		return nil, err
	}

	m := &Metadata{ContractID: contractID, WasmHash: hash.HexString()}
	if err := decodeSections(m, sections); err != nil {
		return nil, err
	}
	return m, nil
}

// entry fetches a single ledger entry and fails when it does not exist.
func (f *Fetcher) entry(ctx context.Context, rpcURL string, headers map[string]string, key xdr.LedgerKey) (xdr.LedgerEntryData, error) {
	res, err := f.ledger.GetLedgerEntries(ctx, rpcURL, headers, key)
	if err != nil {
		return xdr.LedgerEntryData{}, err
	}
	if len(res.Entries) == 0 {
		return xdr.LedgerEntryData{}, errors.New("ledger entry not found")
	}
	return res.Entries[0].Data()
}

// customSections compiles code and collects the custom sections by name.
// Sections that appear more than once are concatenated.
func (f *Fetcher) customSections(ctx context.Context, code []byte) (map[string][]byte, error) {
	compiled, err := f.runtime.CompileModule(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("invalid contract wasm: %w", err)
	}
	defer compiled.Close(ctx)

	sections := make(map[string][]byte)
	for _, s := range compiled.CustomSections() {
		sections[s.Name()] = append(sections[s.Name()], s.Data()...)
	}
	return sections, nil
}
