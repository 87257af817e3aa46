package domain

import "strings"

var PhilippineCityCoordinates = map[string]Coordinate{
	"Manila":             {Lat: 14.5995, Lng: 120.9842},
	"Quezon City":        {Lat: 14.6760, Lng: 121.0437},
	"Caloocan":           {Lat: 14.6507, Lng: 120.9668},
	"Las Piñas":          {Lat: 14.4350, Lng: 120.9822},
	"Makati":             {Lat: 14.5547, Lng: 121.0244},
	"Malabon":            {Lat: 14.6650, Lng: 120.9594},
	"Mandaluyong":        {Lat: 14.5794, Lng: 121.0359},
	"Marikina":           {Lat: 14.6507, Lng: 121.1029},
	"Muntinlupa":         {Lat: 14.4037, Lng: 121.0454},
	"Navotas":            {Lat: 14.6574, Lng: 120.9470},
	"Parañaque":          {Lat: 14.4793, Lng: 121.0198},
	"Pasay":              {Lat: 14.5378, Lng: 120.9896},
	"Pasig":              {Lat: 14.5764, Lng: 121.0851},
	"San Juan":           {Lat: 14.6019, Lng: 121.0355},
	"Taguig":             {Lat: 14.5176, Lng: 121.0509},
	"Valenzuela":         {Lat: 14.7000, Lng: 120.9830},
	"Cebu City":          {Lat: 10.3157, Lng: 123.8854},
	"Davao City":         {Lat: 7.0731, Lng: 125.6128},
	"Antipolo":           {Lat: 14.5878, Lng: 121.1760},
	"Tarlac City":        {Lat: 15.4817, Lng: 120.5979},
	"Zamboanga City":     {Lat: 6.9214, Lng: 122.0790},
	"Cagayan de Oro":     {Lat: 8.4542, Lng: 124.6319},
	"Bacoor":             {Lat: 14.4586, Lng: 120.9374},
	"General Santos":     {Lat: 6.1164, Lng: 125.1716},
	"Butuan":             {Lat: 8.9470, Lng: 125.5403},
	"Angeles":            {Lat: 15.1445, Lng: 120.5950},
	"Olongapo":           {Lat: 14.8294, Lng: 120.2824},
	"Tarlac":             {Lat: 15.4900, Lng: 120.5969},
	"Imus":               {Lat: 14.4297, Lng: 120.9370},
	"Naga":               {Lat: 13.6218, Lng: 123.1948},
	"San Jose del Monte": {Lat: 14.8136, Lng: 121.0453},
	"Iloilo City":        {Lat: 10.7202, Lng: 122.5621},
	"Lapu-Lapu":          {Lat: 10.3103, Lng: 123.9494},
}

// CityCoordinate looks a city up by name, ignoring case and surrounding
// whitespace, and returns its canonical spelling.
func CityCoordinate(name string) (string, Coordinate, bool) {
	name = strings.TrimSpace(name)
	if c, ok := PhilippineCityCoordinates[name]; ok {
		return name, c, true
	}
	for city, c := range PhilippineCityCoordinates {
		if strings.EqualFold(city, name) {
			return city, c, true
		}
	}
	return "", Coordinate{}, false
}
