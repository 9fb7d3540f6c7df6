package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/alex-user-go/hotelsearch/internal/client"
	"github.com/alex-user-go/hotelsearch/internal/present"
	"github.com/alex-user-go/hotelsearch/internal/search/types"
)

type searchFlags struct {
	location string
	district string
	cityCode string
	checkIn  string
	checkOut string
	adults   int
	radius   int
	ratings  []string
	price    string
	sortBy   string
	page     int
}

func searchCmd() *cobra.Command {
	var f searchFlags
	checkIn, checkOut := present.DefaultDates(time.Now())

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search hotel offers",
		Example: `  hotelctl search --location amsterdam --district Jordaan --sort price-asc
  hotelctl search --location paris --checkin 2026-06-12 --checkout 2026-06-15 --ratings 4,5 --price moderate`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.location == "" && f.cityCode == "" {
				return errors.New("either --location or --city-code is required")
			}

			c := newClient(cmd)
			loc := types.Location{Name: f.location, CityCode: strings.ToUpper(f.cityCode)}
			if f.cityCode == "" {
				candidates, err := c.Locations(cmd.Context(), f.location)
				if err != nil {
					return err
				}
				if len(candidates) == 0 {
					return fmt.Errorf("no destination matches %q", f.location)
				}
				loc, err = pickDistrict(candidates[0], f.district)
				if err != nil {
					return err
				}
			}

			req := client.SearchRequest{
				Location: loc,
				CheckIn:  f.checkIn,
				CheckOut: f.checkOut,
				Adults:   f.adults,
				Radius:   f.radius,
				Page:     max(f.page, 1),
				Ratings:  f.ratings,
				SortBy:   f.sortBy,
			}
			if f.price != "" {
				preset, ok := present.PricePresets[f.price]
				if !ok {
					return fmt.Errorf("unknown price preset %q (budget, moderate, luxury)", f.price)
				}
				req.PriceRange = &preset
			}

			result, err := c.Search(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(out, result)
			}
			return present.RenderText(out, result)
		},
	}

	cmd.Flags().StringVar(&f.location, "location", "", "Destination keyword, resolved like the autocomplete")
	cmd.Flags().StringVar(&f.district, "district", "", "District of the resolved destination")
	cmd.Flags().StringVar(&f.cityCode, "city-code", "", "IATA city code, skips destination lookup")
	cmd.Flags().StringVar(&f.checkIn, "checkin", checkIn, "Check-in date YYYY-MM-DD")
	cmd.Flags().StringVar(&f.checkOut, "checkout", checkOut, "Check-out date YYYY-MM-DD")
	cmd.Flags().IntVar(&f.adults, "adults", 2, "Number of adults")
	cmd.Flags().IntVar(&f.radius, "radius", 5, "Search radius in km")
	cmd.Flags().StringSliceVar(&f.ratings, "ratings", nil, "Accepted star ratings, e.g. 4,5")
	cmd.Flags().StringVar(&f.price, "price", "", "Price preset: budget, moderate, luxury")
	cmd.Flags().StringVar(&f.sortBy, "sort", "", "Sort: price-asc, price-desc, rating-desc")
	cmd.Flags().IntVar(&f.page, "page", 1, "Result page")

	return cmd
}

// pickDistrict narrows loc to the named district the same way the web form
// does: the display name becomes "District, City" and the city code stays.
func pickDistrict(loc types.Location, district string) (types.Location, error) {
	if district == "" {
		return loc, nil
	}
	for _, d := range loc.Districts {
		if strings.EqualFold(d.Name, district) {
			loc.Name = d.Name + ", " + loc.Name
			if d.Latitude != nil && d.Longitude != nil {
				loc.GeoCode = &types.GeoCode{Latitude: d.Latitude, Longitude: d.Longitude}
			}
			return loc, nil
		}
	}
	return types.Location{}, fmt.Errorf("%s has no district %q", loc.Name, district)
}
