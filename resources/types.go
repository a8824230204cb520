package resources

import "slices"

// Type identifies a resource type and doubles as its CLI command name
type Type string

const (
	TypeEC2           Type = "ec2"
	TypeVPC           Type = "vpc"
	TypeELB           Type = "elb"
	TypeRDS           Type = "rds"
	TypeElastiCache   Type = "elasticache"
	TypeSecurityGroup Type = "sg"
	TypeS3            Type = "s3"
	TypeVolume        Type = "volume"
	TypeEC2Snapshot   Type = "ec2ss"
	TypeDBSnapshot    Type = "dbss"
	TypeCacheSnapshot Type = "ecss"
)

// AllTypes is the order in which the "all" report lists resource types
var AllTypes = []Type{
	TypeS3,
	TypeVPC,
	TypeEC2,
	TypeELB,
	TypeRDS,
	TypeElastiCache,
	TypeSecurityGroup,
	TypeVolume,
	TypeEC2Snapshot,
	TypeDBSnapshot,
	TypeCacheSnapshot,
}

// Scope tells the report driver whether a lister is queried per region or once
type Scope int

const (
	ScopeRegional Scope = iota
	ScopeGlobal
)

// Columns is the ordered header of a report; its entries are the only valid sort/filter keys
type Columns []string

// Has reports whether name is one of the columns
func (c Columns) Has(name string) bool {
	return slices.Contains(c, name)
}

// Row is one projected record, one value per column
type Row []any
