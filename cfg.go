package qnet

// cfg.go holds the serializable description of a network topology: node
// declarations, connection declarations, explicit channel declarations, and
// hardware templates.  The structs here are the working document the
// construction pipeline operates on; connection expansion appends derived
// node and channel entries to them before instantiation.

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// A NodeDesc declares one node to be instantiated.  Name is the primary key,
// unique across the configuration.  The optional scalar parameters double as
// constructor arguments for the node classes that take them.
type NodeDesc struct {
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`
	Seed     int    `json:"seed" yaml:"seed"`
	Template string `json:"template,omitempty" yaml:"template,omitempty"`

	// memory array sizing, harvested per node name before construction
	MemoSize     int `json:"memo_size,omitempty" yaml:"memo_size,omitempty"`
	DataMemoSize int `json:"data_memo_size,omitempty" yaml:"data_memo_size,omitempty"`

	// number of data qubits this node contributes to a distributed circuit
	NData int `json:"n_data,omitempty" yaml:"n_data,omitempty"`
}

// A QConnectDesc declares a quantum connection between two endpoint nodes.
// The pair is unordered.  Distance is the total link length; expansion halves
// it on either side of the inserted midpoint.
type QConnectDesc struct {
	Node1       string  `json:"node1" yaml:"node1"`
	Node2       string  `json:"node2" yaml:"node2"`
	Attenuation float64 `json:"attenuation" yaml:"attenuation"`
	Distance    int     `json:"distance" yaml:"distance"`
	Type        string  `json:"type" yaml:"type"`
	Seed        int     `json:"seed,omitempty" yaml:"seed,omitempty"`
	Template    string  `json:"template,omitempty" yaml:"template,omitempty"`
}

// A CConnectDesc declares a bidirectional classical connection between two
// nodes.  Delay and Distance are pointers because their absence matters: a
// missing delay is derived from the distance and the propagation speed.
type CConnectDesc struct {
	Node1    string   `json:"node1" yaml:"node1"`
	Node2    string   `json:"node2" yaml:"node2"`
	Distance *float64 `json:"distance,omitempty" yaml:"distance,omitempty"`
	Delay    *float64 `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// A QChannelDesc declares one directed quantum channel.  Normally these are
// derived from quantum connections during expansion, but a configuration may
// also declare them explicitly.
type QChannelDesc struct {
	Name        string  `json:"name,omitempty" yaml:"name,omitempty"`
	Source      string  `json:"source" yaml:"source"`
	Destination string  `json:"destination" yaml:"destination"`
	Attenuation float64 `json:"attenuation" yaml:"attenuation"`
	Distance    int     `json:"distance" yaml:"distance"`
}

// A CChannelDesc declares one directed classical channel.
type CChannelDesc struct {
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Source      string   `json:"source" yaml:"source"`
	Destination string   `json:"destination" yaml:"destination"`
	Distance    *float64 `json:"distance,omitempty" yaml:"distance,omitempty"`
	Delay       *float64 `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// TopoCfg is the full topology configuration as read from a file or built
// programmatically.  It is not frozen: connection expansion appends midpoint
// node declarations and derived channel declarations in place.
type TopoCfg struct {
	Name         string              `json:"name,omitempty" yaml:"name,omitempty"`
	Nodes        []NodeDesc          `json:"nodes" yaml:"nodes"`
	QConnections []QConnectDesc      `json:"qconnections,omitempty" yaml:"qconnections,omitempty"`
	CConnections []CConnectDesc      `json:"cconnections,omitempty" yaml:"cconnections,omitempty"`
	QChannels    []QChannelDesc      `json:"qchannels,omitempty" yaml:"qchannels,omitempty"`
	CChannels    []CChannelDesc      `json:"cchannels,omitempty" yaml:"cchannels,omitempty"`
	Templates    map[string]Template `json:"templates,omitempty" yaml:"templates,omitempty"`

	// global simulation scalars.  Zero values select the defaults: stop time
	// unbounded, ket-vector formalism, truncation 1.
	StopTime   float64 `json:"stop_time,omitempty" yaml:"stop_time,omitempty"`
	Formalism  string  `json:"formalism,omitempty" yaml:"formalism,omitempty"`
	Truncation int     `json:"truncation,omitempty" yaml:"truncation,omitempty"`

	// star-family structural scalars
	LocalMemories    *int   `json:"local_memories,omitempty" yaml:"local_memories,omitempty"`
	ClientNumber     *int   `json:"client_number,omitempty" yaml:"client_number,omitempty"`
	MeasurementBases string `json:"measurement_bases,omitempty" yaml:"measurement_bases,omitempty"`

	// legacy flat star-family hardware keys.  Presence of any of these at the
	// top level selects the legacy dialect; see resolveQlanParams.
	MemoFidelityOrch     *float64 `json:"memo_fidelity_orch,omitempty" yaml:"memo_fidelity_orch,omitempty"`
	MemoFrequencyOrch    *float64 `json:"memo_frequency_orch,omitempty" yaml:"memo_frequency_orch,omitempty"`
	MemoEfficiencyOrch   *float64 `json:"memo_efficiency_orch,omitempty" yaml:"memo_efficiency_orch,omitempty"`
	MemoCoherenceOrch    *float64 `json:"memo_coherence_orch,omitempty" yaml:"memo_coherence_orch,omitempty"`
	MemoWavelengthOrch   *float64 `json:"memo_wavelength_orch,omitempty" yaml:"memo_wavelength_orch,omitempty"`
	MemoFidelityClient   *float64 `json:"memo_fidelity_client,omitempty" yaml:"memo_fidelity_client,omitempty"`
	MemoFrequencyClient  *float64 `json:"memo_frequency_client,omitempty" yaml:"memo_frequency_client,omitempty"`
	MemoEfficiencyClient *float64 `json:"memo_efficiency_client,omitempty" yaml:"memo_efficiency_client,omitempty"`
	MemoCoherenceClient  *float64 `json:"memo_coherence_client,omitempty" yaml:"memo_coherence_client,omitempty"`
	MemoWavelengthClient *float64 `json:"memo_wavelength_client,omitempty" yaml:"memo_wavelength_client,omitempty"`
}

// validate checks the configuration for schema errors ahead of expansion.
// All violations are aggregated into one error.
func (cfg *TopoCfg) validate() error {
	var err error

	seen := make(map[string]bool)
	for idx, nd := range cfg.Nodes {
		if len(nd.Name) == 0 {
			err = multierr.Append(err, fmt.Errorf("node declaration %d has no name", idx))
			continue
		}
		if len(nd.Type) == 0 {
			err = multierr.Append(err, fmt.Errorf("node %s has no type", nd.Name))
		}
		if seen[nd.Name] {
			err = multierr.Append(err, fmt.Errorf("duplicate node name %s", nd.Name))
		}
		seen[nd.Name] = true
	}

	for idx, qc := range cfg.QConnections {
		if len(qc.Node1) == 0 || len(qc.Node2) == 0 {
			err = multierr.Append(err,
				fmt.Errorf("quantum connection %d is missing an endpoint name", idx))
		}
	}

	for idx, cc := range cfg.CConnections {
		if len(cc.Node1) == 0 || len(cc.Node2) == 0 {
			err = multierr.Append(err,
				fmt.Errorf("classical connection %d is missing an endpoint name", idx))
		}
	}

	return err
}

// WriteToFile serializes the TopoCfg and writes it to the named file.
// Extension of the file name selects whether serialization is to json or to
// yaml format.
func (cfg *TopoCfg) WriteToFile(filename string) error {
	pathExt := path.Ext(filename)
	var bytes []byte
	var merr error

	if pathExt == ".yaml" || pathExt == ".YAML" || pathExt == ".yml" {
		bytes, merr = yaml.Marshal(*cfg)
	} else if pathExt == ".json" || pathExt == ".JSON" {
		bytes, merr = json.MarshalIndent(*cfg, "", "\t")
	}

	if merr != nil {
		panic(merr)
	}

	f, cerr := os.Create(filename)
	if cerr != nil {
		panic(cerr)
	}
	_, werr := f.WriteString(string(bytes[:]))
	if werr != nil {
		panic(werr)
	}
	err := f.Close()
	if err != nil {
		panic(err)
	}

	return werr
}

// ReadTopoCfg deserializes a byte slice holding a representation of a TopoCfg.
// If the input argument of dict (those bytes) is empty, the file whose name is
// given is read to acquire them.  A deserialized representation is returned,
// or an error if one is generated from a file read or the deserialization.
func ReadTopoCfg(topoFileName string, useYAML bool, dict []byte) (*TopoCfg, error) {
	var err error

	if len(dict) == 0 {
		fileInfo, err := os.Stat(topoFileName)
		if os.IsNotExist(err) || fileInfo.IsDir() {
			return nil, errors.New(
				fmt.Sprintf("topology %s does not exist or cannot be read", topoFileName))
		}
		dict, err = os.ReadFile(topoFileName)
		if err != nil {
			return nil, err
		}
	}

	example := TopoCfg{}

	if useYAML {
		err = yaml.Unmarshal(dict, &example)
	} else {
		err = json.Unmarshal(dict, &example)
	}

	if err != nil {
		return nil, err
	}

	return &example, nil
}

// readCfgFile loads a TopoCfg from a .json or .yaml/.yml file, selecting the
// codec by extension.
func readCfgFile(filename string) (*TopoCfg, error) {
	ext := path.Ext(filename)
	switch ext {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("unsupported config file format %s: use .json or .yaml/.yml", filename)
	}
	useYAML := ext == ".yaml" || ext == ".yml"
	return ReadTopoCfg(filename, useYAML, []byte{})
}

// samePair reports whether the unordered pairs {a1,a2} and {b1,b2} match.
func samePair(a1, a2, b1, b2 string) bool {
	return (a1 == b1 && a2 == b2) || (a1 == b2 && a2 == b1)
}
