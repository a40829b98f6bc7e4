package value

import (
	"fmt"
	"net"
	"regexp"
	"strconv"
)

// optional address

type Address string

func NewAddress(p *string, val string) *Address {
	*p = val

	return (*Address)(p)
}

func (s *Address) Set(val string) error {
	if len(val) == 0 {
		*s = Address(val)
		return nil
	}

	// Check if the new value is only a port number
	re := regexp.MustCompile("^[0-9]+$")
	if re.MatchString(val) {
		val = ":" + val
	}

	*s = Address(val)
	return nil
}

func (s *Address) String() string {
	return string(*s)
}

func (s *Address) Validate() error {
	if len(string(*s)) == 0 {
		return nil
	}

	_, port, err := net.SplitHostPort(string(*s))
	if err != nil {
		return err
	}

	re := regexp.MustCompile("^[0-9]+$")
	if !re.MatchString(port) {
		return fmt.Errorf("the port must be numerical")
	}

	return nil
}

func (s *Address) IsEmpty() bool {
	return s.Validate() != nil
}

// optional IPv4 address

type IPv4 string

func NewIPv4(p *string, val string) *IPv4 {
	*p = val

	return (*IPv4)(p)
}

func (s *IPv4) Set(val string) error {
	*s = IPv4(val)
	return nil
}

func (s *IPv4) String() string {
	return string(*s)
}

func (s *IPv4) Validate() error {
	val := string(*s)

	if len(val) == 0 {
		return nil
	}

	ip := net.ParseIP(val)
	if ip == nil || ip.To4() == nil {
		return fmt.Errorf("%s is not an IPv4 address", val)
	}

	return nil
}

func (s *IPv4) IsEmpty() bool {
	return len(string(*s)) == 0
}

// network bitmask

type Bitmask int

func NewBitmask(p *int, val int) *Bitmask {
	*p = val

	return (*Bitmask)(p)
}

func (i *Bitmask) Set(val string) error {
	v, err := strconv.Atoi(val)
	if err != nil {
		return err
	}
	*i = Bitmask(v)
	return nil
}

func (i *Bitmask) String() string {
	return strconv.Itoa(int(*i))
}

func (i *Bitmask) Validate() error {
	val := int(*i)

	if val < 0 || val > 32 {
		return fmt.Errorf("%d is not in the range of 0-32", val)
	}

	return nil
}

func (i *Bitmask) IsEmpty() bool {
	return int(*i) == 0
}
