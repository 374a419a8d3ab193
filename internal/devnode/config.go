// Package devnode is a local stand-in for a ledger node. It serves the node
// RPC protocol over HTTP from a YAML-defined network, keeps its vault in
// SQLite and runs SayHelloFlow in-process.
package devnode

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	ledger "ledgergate/internal/ledger/models"
	"ledgergate/pkg/validation"
)

// Config describes the node and the network it sees.
type Config struct {
	Self            ledger.X500Name   `yaml:"self"`
	Addresses       []string          `yaml:"addresses"`
	PlatformVersion int               `yaml:"platformVersion"`
	Notary          ledger.X500Name   `yaml:"notary"`
	Peers           []ledger.X500Name `yaml:"peers"`
	// ServiceOrganisations are never chosen as a SayHelloFlow counterparty.
	ServiceOrganisations []string  `yaml:"serviceOrganisations"`
	RPCUsers             []RPCUser `yaml:"rpcUsers" validate:"required,min=1,dive"`

	SessionSecret string        `yaml:"sessionSecret"`
	SessionTTL    time.Duration `yaml:"sessionTTL" validate:"gte=0"`
	// FlowDelay simulates counterparty and notary round trips.
	FlowDelay time.Duration `yaml:"flowDelay" validate:"gte=0"`
	// MaxPollWait caps how long one flow-result request is held open.
	MaxPollWait time.Duration `yaml:"maxPollWait" validate:"gte=0"`

	VaultDSN string `yaml:"vaultDSN"`
}

// RPCUser is an account allowed to open RPC sessions. Password is accepted
// for local setups and hashed on load; PasswordHash is a bcrypt hash.
type RPCUser struct {
	Username     string `yaml:"username" validate:"required"`
	Password     string `yaml:"password,omitempty"`
	PasswordHash string `yaml:"passwordHash,omitempty"`
}

const (
	defaultSessionTTL  = time.Hour
	defaultMaxPollWait = 30 * time.Second
)

// LoadConfig reads and validates a YAML network definition.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read devnode config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig parses a YAML network definition, applies defaults and hashes
// plain-text passwords.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse devnode config: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) normalize() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	for _, name := range append([]ledger.X500Name{c.Self, c.Notary}, c.Peers...) {
		if name.Organisation == "" || name.Locality == "" || name.Country == "" {
			return fmt.Errorf("legal name %q must include organisation, locality and country", name.String())
		}
	}
	if c.ServiceOrganisations == nil {
		c.ServiceOrganisations = []string{c.Notary.Organisation, "Oracle"}
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = defaultSessionTTL
	}
	if c.MaxPollWait == 0 {
		c.MaxPollWait = defaultMaxPollWait
	}
	if c.VaultDSN == "" {
		c.VaultDSN = ":memory:"
	}
	if c.PlatformVersion == 0 {
		c.PlatformVersion = 4
	}
	for i := range c.RPCUsers {
		u := &c.RPCUsers[i]
		if u.PasswordHash != "" {
			continue
		}
		if u.Password == "" {
			return fmt.Errorf("rpc user %q needs password or passwordHash", u.Username)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password of %q: %w", u.Username, err)
		}
		u.PasswordHash, u.Password = string(hash), ""
	}
	return nil
}

// NodeInfo describes this node as it appears on the network map.
func (c *Config) NodeInfo() ledger.NodeInfo {
	return ledger.NodeInfo{
		Addresses:       c.Addresses,
		LegalIdentities: []ledger.Party{{Name: c.Self, OwningKey: owningKey(c.Self)}},
		PlatformVersion: c.PlatformVersion,
		Serial:          1,
	}
}

// NetworkMap lists every node on the network, this one included.
func (c *Config) NetworkMap() []ledger.NodeInfo {
	nodes := []ledger.NodeInfo{c.NodeInfo(), peerInfo(c.Notary, c.PlatformVersion)}
	for _, p := range c.Peers {
		nodes = append(nodes, peerInfo(p, c.PlatformVersion))
	}
	return nodes
}

func peerInfo(name ledger.X500Name, version int) ledger.NodeInfo {
	return ledger.NodeInfo{
		LegalIdentities: []ledger.Party{{Name: name, OwningKey: owningKey(name)}},
		PlatformVersion: version,
		Serial:          1,
	}
}
