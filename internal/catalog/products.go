package catalog

import "github.com/shopspring/decimal"

const siteBase = "https://chamanbahar.shop/product/"

func product(id int64, name, description, image string, code, mrp, weight, bundle, bori float64, variant, slug string) Product {
	url := ""
	if slug != "" {
		url = siteBase + slug
	}
	return Product{
		ID:          id,
		Name:        name,
		Description: description,
		ImageRef:    image,
		Code:        decimal.NewFromFloat(code),
		MRP:         decimal.NewFromFloat(mrp),
		Weight:      decimal.NewFromFloat(weight),
		Bundle:      decimal.NewFromFloat(bundle),
		Bori:        decimal.NewFromFloat(bori),
		Scheme:      "NA",
		VariantKey:  variant,
		Category:    variant,
		WebsiteURL:  url,
	}
}

// DefaultProducts is the fixed price list carried by salespeople.
func DefaultProducts() []Product {
	list := []Product{
		product(1, "(₹ 5) Meat Masala", "Chaman Bahar Meat Masala (₹ 5)", "masala_rs_5", 95, 5, 8, 25, 40, "Meat Masala", "chaman-bahar-meat-masala-%E2%82%B95"),
		product(2, "(₹ 10) Meat Masala", "Chaman Bahar Meat Masala (₹ 10)", "masala_rs_10", 95, 10, 16, 13, 40, "Meat Masala", "chaman-bahar-meat-masala-%E2%82%B910"),
		product(3, "(₹ 30) Meat Masala", "Chaman Bahar Meat Masala (₹ 30)", "masala_rs_30", 95, 30, 55, 4, 40, "Meat Masala", "chaman-bahar-meat-masala"),
		product(4, "(200g) Meat Masala", "Chaman Bahar Meat Masala (200 Gram)", "masala_200g", 310, 88, 200, 5, 20, "Meat Masala", "chaman-bahar-meat-masala-200gm"),
		product(5, "(500g) Meat Masala", "Chaman Bahar Meat Masala (500 Gram)", "masala_500g", 300, 198, 500, 2, 20, "Meat Masala", "chaman-bahar-meat-masala-500gm"),

		product(6, "(₹ 5) Haldi Powder", "Chaman Bahar (₹ 5) Haldi Powder", "haldi_rs_5", 77, 5, 8, 26, 30, "Haldi Powder", "chaman-bahar-haldi-powder-%E2%82%B9-5"),
		product(7, "(₹ 10) Haldi Powder", "Chaman Bahar (₹ 10) Haldi Powder", "haldi_rs_10", 120, 10, 20, 20, 20, "Haldi Powder", "chaman-bahar-haldi-powder-rs-10"),
		product(8, "(200g) Haldi Powder", "Chaman Bahar (200g) Haldi Powder", "haldi_200g", 225, 72, 200, 5, 20, "Haldi Powder", "chaman-bahar-haldi-powder-200-gm"),
		product(9, "(50g Box) Haldi Powder", "(50g Box) Haldi Powder", "haldi_box_50g", 120, 21, 50, 10, 20, "Haldi Powder", "chaman-bahar-haldi-powder-50-gm"),
		product(10, "(100g Box) Haldi Powder", "(100g Box) Haldi Powder", "haldi_box_100g", 240, 41, 100, 10, 20, "Haldi Powder", "chaman-bahar-haldi-powder-100-gm"),
		product(11, "(200g Box) Haldi Powder", "(200g Box) Haldi Powder", "haldi_box_200g", 225, 72, 200, 5, 20, "Haldi Powder", "chaman-bahar-haldi-powder"),

		product(12, "(₹ 5) Mishran Garam Masala", "", "mishran_5", 95, 5, 8, 25, 20, "Mishran Garam Masala", "mishran-garam-masala-%E2%82%B95"),
		product(13, "(200g Box) Mishran Garam Masala", "", "mishran_200g", 400, 115, 200, 5, 20, "Mishran Garam Masala", "mishran-garam-masala"),
		product(14, "(200g Box) Kitchen King", "", "kk200", 435, 125, 200, 5, 10, "Kitchen King", "kitchen-king"),
		product(15, "Fry Masala Pkt", "", "fry_pkt", 360, 31, 50, 20, 20, "Fry Masala", "chaman-bahar-chicken-machhli-fry-masala"),

		product(16, "(₹ 10) Biryani/Pulav Masala Box", "", "briyani_10", 95, 10, 8, 12, 10, "Biryani", "cbm-biryani-pulav-masala"),
		product(17, "(50g Box) Biryani Masala", "", "briyani_50", 380, 52, 50, 10, 10, "Biryani", "biryani-masala"),
		product(18, "(₹ 10) Chicken Masala Pkt", "", "chicken_10", 95, 10, 16, 13, 40, "Chicken", "chicken-meat-masala"),
		product(19, "(50g Box) Chicken/Mutton Masala", "", "chicken_mutton_50_box", 320, 43, 50, 10, 10, "Chicken", "chicken-mutton-masala"),
		product(20, "(₹ 10) Chaat Masala Box", "", "chaat_10", 95, 10, 18, 12, 10, "Chaat Masala", "chaman-bahar-chaat-masala"),
		product(21, "(50g Box) Chaat Masala", "", "chaat_50", 210, 29, 50, 10, 10, "Chaat Masala", "chaman-bahar-chaat-masala-50-gm"),
		product(22, "(₹ 10 Box) Kashmiri Mirch", "", "kashmiri_10", 95, 10, 12, 12, 20, "Kashmiri Mirch", "kashmiri-mirch-powder"),
		product(23, "(50g Box) Kashmiri Mirch", "", "kashimiri_50", 375, 52, 50, 10, 10, "Kashmiri Mirch", "kashmiri-mirch-powder"),
		product(24, "(50g Box) Fish & Chicken Roasted Masala", "", "fish_chicken_roasted_50_box", 195, 35, 50, 10, 20, "Fry Masala", "fish-chicken-roasted-masala"),
		product(25, "(100g Box) Roasted Jeera Powder", "", "jeera_100_b", 310, 80, 100, 5, 10, "Other", "chaman-bahar-roasted-jeera-powder-100-gm"),
		product(26, "(100g Box) Kali Mirch Powder", "", "kali_mirch_100_b", 655, 165, 100, 5, 10, "Other", "chaman-bahar-kali-mirch-powder-100-gm"),
		product(27, "(50g Box) Kali Mirch Powder", "", "kali_mirch_100_b", 330, 85, 50, 5, 10, "Other", "chaman-bahar-kali-mirch-powder-100-gm"),

		// 28-31 previously shipped under id 20; see DESIGN.md.
		product(28, "(₹ 10) Chole Masala Box", "", "chole_10", 95, 10, 12, 12, 10, "Chole Masala", "chaman-bahar-chaat-masala"),
		product(29, "(₹ 10) Paneer Masala Box", "", "paneer_10", 95, 10, 12, 12, 10, "Paneer Masala", "chaman-bahar-chaat-masala"),
		product(30, "(₹ 10) Kasoori Methi Box", "", "kasoori_10", 95, 10, 8, 12, 10, "Kasoori Methi", "chaman-bahar-chaat-masala"),
		product(31, "(100g Box) Seekh Kabab Masala Box", "", "seekh_100gm", 245, 60, 100, 5, 10, "Seekh Masala", "chaman-bahar-chaat-masala"),

		product(32, "(25g Box) Chicken Tikka Masala", "", "chickentikka_25_b", 275, 37, 25, 10, 10, "Other", "chaman-bahar-chicken-tikka-masala"),
		product(33, "(25g Box) Special Meat Masala", "", "spl_meat_25_b", 202, 27, 25, 10, 10, "Other", "chaman-bahar-special-meat-masala"),
		product(34, "(25g Box) Al-faham Masala", "", "alfaham_25_b", 260, 35, 25, 10, 10, "Other", "chaman-bahar-alfaham-masala"),
		product(35, "(50g Box) Jaljeera Powder", "", "jaljeera_50_b", 180, 25, 50, 10, 10, "Other", "chaman-bahar-jaljeera-powder-50-gm"),

		product(36, "(1Kg Loose) Fish Masala", "", "placeholder_image", 330, 450, 1000, 1, 10, "Loose", ""),
		product(37, "(1Kg Loose) CBM-Mishran Garam Masala", "", "placeholder_image", 225, 350, 1000, 10, 2, "Loose", ""),
	}
	return list
}

// Default returns the catalog built from DefaultProducts.
func Default() *Catalog {
	c, err := New(DefaultProducts())
	if err != nil {
		panic(err)
	}
	return c
}
