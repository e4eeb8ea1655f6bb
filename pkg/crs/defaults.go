package crs

import "github.com/gardar/ocrcoords/pkg/geodesy"

// ParisMeridian is the longitude of the Paris meridian east of Greenwich.
const ParisMeridian = 2.337229166667

// NTFToRGF93 is the IGN three-parameter shift from NTF to RGF93/WGS84.
var NTFToRGF93 = geodesy.Helmert{TX: -168, TY: -60, TZ: 320}

// DefaultSystems returns the metropolitan, legacy and overseas systems in
// detection order. Overlapping bounds are resolved by that order: the
// current national system first, Lambert II étendu before the zone it
// extends.
func DefaultSystems() []System {
	systems := []System{
		{
			ID: Lambert93, Name: "Lambert 93 (RGF93)", Code: "EPSG:2154", Kind: Projected,
			Projection: &geodesy.LCC{Lat0: 46.5, Lat1: 49, Lat2: 44, Lon0: 3, K0: 1, X0: 700000, Y0: 6600000, Ellipsoid: geodesy.GRS80},
			Bounds:     Bounds{MinX: 100000, MaxX: 1300000, MinY: 6000000, MaxY: 7200000},
		},
		ntfZone(Lambert2E, "Lambert II étendu (NTF)", "EPSG:27572", 46.8, 0.99987742, 600000, 2200000,
			Bounds{MinX: 0, MaxX: 1200000, MinY: 1600000, MaxY: 2700000}),
		ntfZone(Lambert1, "Lambert I (NTF)", "EPSG:27571", 49.5, 0.999877341, 600000, 1200000,
			Bounds{MinX: 0, MaxX: 1200000, MinY: 600000, MaxY: 1700000}),
		ntfZone(Lambert2, "Lambert II (NTF)", "EPSG:27572", 46.8, 0.99987742, 600000, 2200000,
			Bounds{MinX: 0, MaxX: 1200000, MinY: 1700000, MaxY: 2700000}),
		ntfZone(Lambert3, "Lambert III (NTF)", "EPSG:27573", 44.1, 0.999877499, 600000, 3200000,
			Bounds{MinX: 0, MaxX: 1200000, MinY: 2700000, MaxY: 3700000}),
		ntfZone(Lambert4, "Lambert IV (NTF)", "EPSG:27574", 42.165, 0.99994471, 234.358, 4185861.369,
			Bounds{MinX: 0, MaxX: 1200000, MinY: 3700000, MaxY: 4800000}),

		conicZone(CC42, "CC42 (Antilles)", 14.25, 16.25, 15.25, -61.5,
			Bounds{MinX: 1600000, MaxX: 1800000, MinY: 1100000, MaxY: 1300000}),
		conicZone(CC43, "CC43 (Guyane)", 2.75, 5.75, 4.25, -53,
			Bounds{MinX: 1600000, MaxX: 1900000, MinY: 1000000, MaxY: 1400000}),
		conicZone(CC44, "CC44 (Réunion)", -22.5, -20.5, -21.5, 55.5,
			Bounds{MinX: 1600000, MaxX: 1800000, MinY: 1100000, MaxY: 1300000}),
		conicZone(CC45, "CC45 (Mayotte)", -13.5, -11.5, -12.5, 45,
			Bounds{MinX: 1650000, MaxX: 1750000, MinY: 1150000, MaxY: 1250000}),
		conicZone(CC46, "CC46 (Saint-Pierre-et-Miquelon)", 46.25, 47.75, 47, -56.25,
			Bounds{MinX: 1680000, MaxX: 1720000, MinY: 1180000, MaxY: 1220000}),
		conicZone(CC47, "CC47 (Polynésie française)", -18.5, -16.5, -17.5, -149.5,
			Bounds{MinX: 1650000, MaxX: 1750000, MinY: 1150000, MaxY: 1250000}),
		conicZone(CC48, "CC48 (Nouvelle-Calédonie)", -22.5, -20.5, -21.5, 166,
			Bounds{MinX: 1600000, MaxX: 1800000, MinY: 1100000, MaxY: 1300000}),
		conicZone(CC49, "CC49 (Wallis-et-Futuna)", -14.5, -12.5, -13.5, -178,
			Bounds{MinX: 1680000, MaxX: 1720000, MinY: 1180000, MaxY: 1220000}),
		conicZone(CC50, "CC50 (Kerguelen)", -50, -48, -49, 70,
			Bounds{MinX: 1650000, MaxX: 1750000, MinY: 1150000, MaxY: 1250000}),

		{
			ID: WGS84, Name: "WGS84 (GPS)", Code: "EPSG:4326", Kind: Geographic,
			Ellipsoid: geodesy.WGS84,
			Bounds:    Bounds{MinX: -180, MaxX: 180, MinY: -90, MaxY: 90},
		},
		{
			ID: RGF93Geo, Name: "RGF93 géographique", Code: "EPSG:4171", Kind: Geographic,
			Ellipsoid: geodesy.GRS80,
			Bounds:    Bounds{MinX: -180, MaxX: 180, MinY: -90, MaxY: 90},
		},
	}
	return systems
}

// ntfZone builds a one-standard-parallel Lambert zone on NTF (Paris meridian).
func ntfZone(id, name, code string, lat, k0, x0, y0 float64, b Bounds) System {
	return System{
		ID: id, Name: name, Code: code, Kind: Projected,
		Projection: &geodesy.LCC{
			Lat0: lat, Lat1: lat, Lat2: lat,
			PrimeMeridian: ParisMeridian,
			K0:            k0, X0: x0, Y0: y0,
			Ellipsoid: geodesy.Clarke1880IGN,
		},
		ToCommon: NTFToRGF93,
		Bounds:   b,
	}
}

// conicZone builds an overseas conformal conic zone on GRS80. The zones
// share one registry code, so Registry.AmbiguousCode keeps them away from
// external services.
func conicZone(id, name string, lat1, lat2, lat0, lon0 float64, b Bounds) System {
	return System{
		ID: id, Name: name, Code: "EPSG:5490", Kind: Projected,
		Projection: &geodesy.LCC{
			Lat0: lat0, Lat1: lat1, Lat2: lat2, Lon0: lon0,
			K0: 1, X0: 1700000, Y0: 1200000,
			Ellipsoid: geodesy.GRS80,
		},
		Bounds: b,
	}
}
