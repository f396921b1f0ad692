// Package seed loads carrier and market site reference data from a YAML file.
package seed

import (
	"fmt"
	"os"
	"strings"

	"github.com/dilshat/sms-responder/dao"
	"github.com/dilshat/sms-responder/model"
	"gopkg.in/yaml.v3"
)

type Site struct {
	Id          uint32   `yaml:"id"`
	Name        string   `yaml:"name"`
	Domain      string   `yaml:"domain"`
	ZipPrefixes []string `yaml:"zip_prefixes"`
}

type Carrier struct {
	Name        string   `yaml:"name"`
	Code        string   `yaml:"code"`
	DisplayName string   `yaml:"display_name"`
	Username    string   `yaml:"username"`
	Password    string   `yaml:"password"`
	Sites       []uint32 `yaml:"sites"`
	Major       bool     `yaml:"major"`
}

type File struct {
	Sites    []Site    `yaml:"sites"`
	Carriers []Carrier `yaml:"carriers"`
}

// Load reads and parses a seed file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing seed: %w", err)
	}

	siteIds := make(map[uint32]bool, len(f.Sites))
	for i, s := range f.Sites {
		if s.Id == 0 {
			return nil, fmt.Errorf("site #%d: id is required", i+1)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("site %d: name is required", s.Id)
		}
		siteIds[s.Id] = true
	}

	for i, c := range f.Carriers {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("carrier #%d: name is required", i+1)
		}
		for _, id := range c.Sites {
			if !siteIds[id] {
				return nil, fmt.Errorf("carrier %q: unknown site %d", c.Name, id)
			}
		}
	}

	return &f, nil
}

// Apply stores the seed data. Sites are saved by id and carriers are
// upserted by name, so applying the same file twice is harmless.
func Apply(f *File, siteDao dao.SiteDao, carrierDao dao.CarrierDao) error {
	for _, s := range f.Sites {
		err := siteDao.Save(model.Site{Id: s.Id, Name: s.Name, Domain: s.Domain, ZipPrefixes: s.ZipPrefixes})
		if err != nil {
			return fmt.Errorf("saving site %d: %w", s.Id, err)
		}
	}

	for _, c := range f.Carriers {
		_, err := carrierDao.Upsert(model.Carrier{
			Name:        c.Name,
			Code:        c.Code,
			DisplayName: c.DisplayName,
			Username:    c.Username,
			Password:    c.Password,
			Sites:       c.Sites,
			IsMajor:     c.Major,
		})
		if err != nil {
			return fmt.Errorf("saving carrier %q: %w", c.Name, err)
		}
	}

	return nil
}
