package ledgerdump

import (
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"gopkg.in/yaml.v3"
)

const (
	// word separator used in dump file naming
	sep = "-"
	// suffix of snapshot files
	fileSuffix = "crash.yaml"
)

// ID is a unique identifier of the snapshot.
type ID struct {
	// Label of the snapshot source (e.g. testnet, mainnet).
	Label string
	// Blockchain height at which the state was pulled.
	Block uint32
}

// String returns hyphen-separated ID fields.
func (x ID) String() string {
	return x.Label + sep + strconv.FormatUint(uint64(x.Block), 10)
}

// decodes ID fields from the hyphen-separated string. The block number is
// taken from the end, so labels may contain hyphens.
func (x *ID) decodeString(s string) error {
	i := strings.LastIndex(s, sep)
	if i <= 0 {
		return fmt.Errorf("expected '%s'-separated label and block number", sep)
	}

	n, err := strconv.ParseUint(s[i+1:], 10, 32)
	if err != nil {
		return fmt.Errorf("decode block number from '%s': %w", s[i+1:], err)
	}

	x.Label = s[:i]
	x.Block = uint32(n)

	return nil
}

func fileName(id ID) string {
	return strings.Join([]string{id.String(), fileSuffix}, sep)
}

// Save writes the snapshot into the directory. Save fails if snapshot with
// the same ID already exists.
func Save(dir string, id ID, s Snapshot) (string, error) {
	if id.Label == "" {
		return "", errors.New("empty snapshot label")
	}

	p := filepath.Join(dir, fileName(id))

	err := checkFileNotExists(p)
	if err != nil {
		return p, err
	}

	data, err := yaml.Marshal(toYAML(s))
	if err != nil {
		return p, fmt.Errorf("encode snapshot: %w", err)
	}

	err = os.WriteFile(p, data, 0600)
	if err != nil {
		return p, fmt.Errorf("write snapshot file: %w", err)
	}

	return p, nil
}

// Load reads the snapshot written by Save.
func Load(p string) (Snapshot, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot file: %w", err)
	}

	var y yamlSnapshot

	err = yaml.Unmarshal(data, &y)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot file '%s': %w", p, err)
	}

	s, err := y.decode()
	if err != nil {
		return s, fmt.Errorf("decode snapshot file '%s': %w", p, err)
	}

	return s, nil
}

// IterateSnapshots passes all snapshots of the directory into f.
func IterateSnapshots(dir string, f func(ID, Snapshot) error) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, e error) error {
		if errors.Is(e, fs.ErrNotExist) {
			return nil
		}

		if e != nil {
			return e
		}

		if d.IsDir() || !strings.HasSuffix(d.Name(), fileSuffix) {
			return nil
		}

		var id ID

		err := id.decodeString(strings.TrimSuffix(d.Name(), sep+fileSuffix))
		if err != nil {
			return fmt.Errorf("decode snapshot ID from file name '%s': %w", d.Name(), err)
		}

		s, err := Load(p)
		if err != nil {
			return err
		}

		return f(id, s)
	})
}

// checkFileNotExists checks that there is no file at the specified path.
func checkFileNotExists(p string) error {
	_, err := os.Stat(p)
	if !os.IsNotExist(err) {
		if err == nil {
			err = os.ErrExist
		}
		return fmt.Errorf("file '%s' absence check failed: %w", p, err)
	}
	return nil
}

type (
	yamlSnapshot struct {
		Contract           string        `yaml:"contract"`
		Owner              string        `yaml:"owner"`
		Agent              string        `yaml:"agent"`
		AllowCoinOverwrite bool          `yaml:"allow_coin_overwrite"`
		MaxBalance         string        `yaml:"max_balance"`
		Intake             string        `yaml:"intake,omitempty"`
		Coins              []yamlCoin    `yaml:"coins"`
		Balances           []yamlBalance `yaml:"balances"`
		Totals             []yamlTotal   `yaml:"totals"`
	}

	yamlCoin struct {
		ID    string `yaml:"id"`
		Token string `yaml:"token"`
	}

	yamlBalance struct {
		User   string `yaml:"user"`
		CoinID string `yaml:"coin"`
		Amount string `yaml:"amount"`
	}

	yamlTotal struct {
		CoinID string `yaml:"coin"`
		Amount string `yaml:"amount"`
	}
)

func toYAML(s Snapshot) yamlSnapshot {
	y := yamlSnapshot{
		Contract:           s.Contract.StringLE(),
		Owner:              address.Uint160ToString(s.Owner),
		Agent:              address.Uint160ToString(s.Agent),
		AllowCoinOverwrite: s.AllowCoinOverwrite,
	}

	if s.MaxBalance != nil {
		y.MaxBalance = s.MaxBalance.String()
	}

	if s.Intake != nil {
		y.Intake = s.Intake.StringLE()
	}

	for _, c := range s.Coins {
		y.Coins = append(y.Coins, yamlCoin{ID: c.ID.String(), Token: c.Token.StringLE()})
	}

	for _, b := range s.Balances {
		y.Balances = append(y.Balances, yamlBalance{
			User:   address.Uint160ToString(b.User),
			CoinID: b.CoinID.String(),
			Amount: b.Amount.String(),
		})
	}

	for _, t := range s.Totals {
		y.Totals = append(y.Totals, yamlTotal{CoinID: t.CoinID.String(), Amount: t.Amount.String()})
	}

	return y
}

func (y yamlSnapshot) decode() (Snapshot, error) {
	var (
		s = Snapshot{AllowCoinOverwrite: y.AllowCoinOverwrite}
		d decoder
	)

	s.Contract = d.hash("contract", y.Contract)
	s.Owner = d.address("owner", y.Owner)
	s.Agent = d.address("agent", y.Agent)

	if y.MaxBalance != "" {
		s.MaxBalance = d.integer("max balance", y.MaxBalance)
	}

	if y.Intake != "" {
		h := d.hash("intake", y.Intake)
		s.Intake = &h
	}

	for _, c := range y.Coins {
		s.Coins = append(s.Coins, Coin{
			ID:    d.integer("coin ID", c.ID),
			Token: d.hash("coin token", c.Token),
		})
	}

	for _, b := range y.Balances {
		s.Balances = append(s.Balances, Balance{
			User:   d.address("balance user", b.User),
			CoinID: d.integer("balance coin", b.CoinID),
			Amount: d.integer("balance amount", b.Amount),
		})
	}

	for _, t := range y.Totals {
		s.Totals = append(s.Totals, Total{
			CoinID: d.integer("total coin", t.CoinID),
			Amount: d.integer("total amount", t.Amount),
		})
	}

	return s, d.err
}

// decoder remembers the first failure so that fields can be decoded in a
// row.
type decoder struct {
	err error
}

func (d *decoder) hash(field, s string) util.Uint160 {
	h, err := util.Uint160DecodeStringLE(s)
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("%s: %w", field, err)
	}
	return h
}

func (d *decoder) address(field, s string) util.Uint160 {
	h, err := address.StringToUint160(s)
	if err != nil && d.err == nil {
		d.err = fmt.Errorf("%s: %w", field, err)
	}
	return h
}

func (d *decoder) integer(field, s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		if d.err == nil {
			d.err = fmt.Errorf("%s: invalid integer '%s'", field, s)
		}
		return new(big.Int)
	}
	return v
}
