package models

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// X500Name is the structured legal name of a network participant.
// Organisation, Locality and Country are mandatory on the ledger network.
type X500Name struct {
	CommonName       string `json:"commonName,omitempty" yaml:"commonName,omitempty"`
	OrganisationUnit string `json:"organisationUnit,omitempty" yaml:"organisationUnit,omitempty"`
	Organisation     string `json:"organisation" yaml:"organisation"`
	Locality         string `json:"locality" yaml:"locality"`
	State            string `json:"state,omitempty" yaml:"state,omitempty"`
	Country          string `json:"country" yaml:"country"`
}

// String renders the name in attribute form, e.g. "O=PartyA, L=London, C=GB".
func (n X500Name) String() string {
	parts := make([]string, 0, 6)
	add := func(attr, v string) {
		if v != "" {
			parts = append(parts, attr+"="+v)
		}
	}
	add("CN", n.CommonName)
	add("OU", n.OrganisationUnit)
	add("O", n.Organisation)
	add("L", n.Locality)
	add("ST", n.State)
	add("C", n.Country)
	return strings.Join(parts, ", ")
}

// IsZero reports whether no attribute is set.
func (n X500Name) IsZero() bool {
	return n == X500Name{}
}

// ParseX500Name parses the attribute form produced by String.
func ParseX500Name(s string) (X500Name, error) {
	var n X500Name
	for _, part := range strings.Split(s, ",") {
		attr, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return X500Name{}, fmt.Errorf("malformed name attribute %q", part)
		}
		value = strings.TrimSpace(value)
		switch strings.ToUpper(strings.TrimSpace(attr)) {
		case "CN":
			n.CommonName = value
		case "OU":
			n.OrganisationUnit = value
		case "O":
			n.Organisation = value
		case "L":
			n.Locality = value
		case "ST":
			n.State = value
		case "C":
			n.Country = value
		default:
			return X500Name{}, fmt.Errorf("unsupported name attribute %q", attr)
		}
	}
	if n.Organisation == "" || n.Locality == "" || n.Country == "" {
		return X500Name{}, fmt.Errorf("name %q must include O, L and C", s)
	}
	return n, nil
}

// UnmarshalYAML accepts either the attribute form or a mapping of fields.
func (n *X500Name) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		parsed, err := ParseX500Name(value.Value)
		if err != nil {
			return err
		}
		*n = parsed
		return nil
	}
	type fields X500Name
	return value.Decode((*fields)(n))
}

// Party is a legal identity together with the key it signs with.
type Party struct {
	Name      X500Name `json:"name"`
	OwningKey string   `json:"owningKey,omitempty"`
}

// NodeInfo describes a node as published on the network map.
type NodeInfo struct {
	Addresses       []string `json:"addresses"`
	LegalIdentities []Party  `json:"legalIdentities"`
	PlatformVersion int      `json:"platformVersion"`
	Serial          int64    `json:"serial"`
}

// PrimaryName returns the name of the node's first legal identity.
func (n NodeInfo) PrimaryName() (X500Name, bool) {
	if len(n.LegalIdentities) == 0 {
		return X500Name{}, false
	}
	return n.LegalIdentities[0].Name, true
}
